// Package bag implements a Breakend Associated Graph: an in-memory counter
// of fusion candidate edges (gene pairs) and, per edge, the distinct
// junction breakpoints supporting it, along with the reads/evidence behind
// each. It is a direct reimplementation of BAG_uthash.h's bag_t/junction_t
// uthash tables as a plain Go map, since uthash's role is exactly map[K]*V
// here — there is no fit for a C hash-table library in a Go rewrite.
package bag

import (
	"sort"

	farm "github.com/dgryski/go-farm"
)

// EdgeKey identifies one candidate fusion edge between two genes. Callers
// construct it (e.g. "GENE1>GENE2") the same way BAG_uthash.h keys bag_t by
// a caller-supplied "edge" string.
type EdgeKey string

// JunctionKey identifies one specific breakpoint within an edge, mirroring
// junction_t's idx ("exon1.start.exon2.end" in the original source).
type JunctionKey struct {
	Ref1Pos, Ref2Pos int
}

// Junction accumulates the reads supporting one specific breakpoint.
type Junction struct {
	Hits int
}

// Edge accumulates the reads supporting one gene-pair fusion candidate,
// split by the distinct breakpoints (Junctions) observed for it.
type Edge struct {
	Weight    int
	Junctions map[JunctionKey]*Junction

	evidenceSeen map[uint64]bool // dedup set over farm.Hash64(evidence)
}

// Graph is a Breakend Associated Graph: a map from gene-pair edge to the
// evidence supporting it.
type Graph struct {
	edges map[EdgeKey]*Edge
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph {
	return &Graph{edges: map[EdgeKey]*Edge{}}
}

// Add records one read of support for edge at junction, with evidence (the
// supporting read's aligned bases, or any other per-read fingerprint used
// for dedup) as in BAG_uthash_add. A read whose evidence was already seen
// for this edge does not increase Weight again — the equivalent of the
// original source's separate bag_uniq dedup pass, folded into Add so the
// evidence list never has to be re-sorted after the fact.
func (g *Graph) Add(edge EdgeKey, junction JunctionKey, evidence string) {
	e, ok := g.edges[edge]
	if !ok {
		e = &Edge{
			Junctions:    map[JunctionKey]*Junction{},
			evidenceSeen: map[uint64]bool{},
		}
		g.edges[edge] = e
	}

	h := farm.Hash64([]byte(evidence))
	if e.evidenceSeen[h] {
		return
	}
	e.evidenceSeen[h] = true
	e.Weight++

	j, ok := e.Junctions[junction]
	if !ok {
		j = &Junction{}
		e.Junctions[junction] = j
	}
	j.Hits++
}

// Edge returns the accumulated evidence for edge, or nil if no read has
// supported it.
func (g *Graph) Edge(edge EdgeKey) *Edge {
	return g.edges[edge]
}

// Edges returns every edge accumulated so far.
func (g *Graph) Edges() map[EdgeKey]*Edge {
	return g.edges
}

// Trim removes every edge whose Weight is below minWeight, mirroring
// bag_trim's "delete edges in bag with evidence less than min_weight".
func (g *Graph) Trim(minWeight int) {
	for k, e := range g.edges {
		if e.Weight < minWeight {
			delete(g.edges, k)
		}
	}
}

// SortedEdges returns the graph's edges ordered by descending Weight, then
// by EdgeKey, for stable, deterministic reporting.
func (g *Graph) SortedEdges() []EdgeKey {
	keys := make([]EdgeKey, 0, len(g.edges))
	for k := range g.edges {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		wi, wj := g.edges[keys[i]].Weight, g.edges[keys[j]].Weight
		if wi != wj {
			return wi > wj
		}
		return keys[i] < keys[j]
	})
	return keys
}
