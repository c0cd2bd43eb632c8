package fusion

import "github.com/pkg/errors"

// GeneModel constrains the jump-alignment recurrence (spec.md §4.5) to land
// at biologically legal exon-jump positions. It replaces the original C++
// source's file-scope S1/S2/JUNCTION globals (see alignment.h) with a value
// the caller constructs and passes in, as spec.md §9 "Open questions"
// recommends.
//
// Coordinates are 0-based offsets into ref1 (ExitSet1) and ref2 (EntrySet2),
// i.e. the index of the reference symbol just consumed when the jump
// transition is considered.
//
// When both sets are empty, the variant degenerates to the unconstrained
// recurrence (spec.md §4.5).
type GeneModel struct {
	ExitSet1  map[int]bool
	EntrySet2 map[int]bool
}

// NewGeneModel builds a GeneModel from explicit lists of legal exit
// positions in ref1 and entry positions in ref2.
func NewGeneModel(exit1, entry2 []int) GeneModel {
	m := GeneModel{
		ExitSet1:  make(map[int]bool, len(exit1)),
		EntrySet2: make(map[int]bool, len(entry2)),
	}
	for _, p := range exit1 {
		m.ExitSet1[p] = true
	}
	for _, p := range entry2 {
		m.EntrySet2[p] = true
	}
	return m
}

// empty reports whether the model has no constraints at all, i.e. the
// unconstrained recurrence applies verbatim.
func (m GeneModel) empty() bool {
	return len(m.ExitSet1) == 0 && len(m.EntrySet2) == 0
}

// allowExit reports whether a jump may be taken right after ref1[ref1Index]
// has been consumed.
func (m GeneModel) allowExit(ref1Index int) bool {
	if len(m.ExitSet1) == 0 {
		return true
	}
	return m.ExitSet1[ref1Index]
}

// allowEntry reports whether a jump may resolve (into MATCH or INS) at the
// 0-based ref2 offset ref2Index, in the coordinates of the GeneModel comment.
func (m GeneModel) allowEntry(ref2Index int) bool {
	if len(m.EntrySet2) == 0 {
		return true
	}
	return m.EntrySet2[ref2Index]
}

// ParseExonBoundaries validates a flat "start,end,start,end,..." exon
// coordinate list and returns its positions, in input order, as a list
// suitable for GeneModel.ExitSet1/EntrySet2. The positions are not sorted. It
// returns an error for an odd number of coordinates or an exon whose end is
// before its start.
func ParseExonBoundaries(positions []int) ([]int, error) {
	if len(positions)%2 != 0 {
		return nil, errors.Errorf("ParseExonBoundaries: odd number of coordinates: %v", positions)
	}
	out := make([]int, 0, len(positions))
	for i := 0; i < len(positions); i += 2 {
		start, end := positions[i], positions[i+1]
		if end < start {
			return nil, errors.Errorf("ParseExonBoundaries: inverted exon [%d,%d)", start, end)
		}
		out = append(out, start, end)
	}
	return out, nil
}
