package fusion

// backtraceDescriptor records the best score seen so far during the
// recurrence, together with the cell it was observed at. refIndex is in the
// virtual concatenated coordinate described by spec.md §3: [0,ref1Size]
// addresses ref1, [ref1Size, ref1Size+ref2Size] addresses ref2, with
// ref1Size as the shared junction. The terminal state is always MATCH.
type backtraceDescriptor struct {
	found      bool
	best       int
	refIndex   int
	queryIndex int
}

// update records (score, refIndex, queryIndex) as the new best candidate iff
// it strictly improves on the current best. Using strict improvement (not
// >=) combined with always calling update in row-major ref-then-query
// traversal order gives the "stable first-seen wins" tie-break rule
// required by spec.md §4.3.
func (b *backtraceDescriptor) update(score, refIndex, queryIndex int) {
	if !b.found || score > b.best {
		b.found = true
		b.best = score
		b.refIndex = refIndex
		b.queryIndex = queryIndex
	}
}

// appendRun appends n copies of op to runs, coalescing with the previous run
// if it has the same op.
func appendRun(runs *[]OpRun, op byte, n int) {
	if n <= 0 {
		return
	}
	if l := len(*runs); l > 0 && (*runs)[l-1].Op == op {
		(*runs)[l-1].N += n
		return
	}
	*runs = append(*runs, OpRun{Op: op, N: n})
}

// reverseRuns reverses runs in place.
func reverseRuns(runs []OpRun) {
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
}

// backtrace walks the pointer matrices from bt's terminal cell back to a
// cell with state MATCH and queryIndex 0, or to a MATCH cell in a
// reference's first column, whose remaining query prefix becomes a left
// soft-clip, reconstructing the two-sided alignment (spec.md §4.4).
func (e *Engine) backtrace(query, ref1, ref2 []byte, bt backtraceDescriptor) Result {
	querySize := len(query)
	ref1Size := len(ref1)
	t := &e.t

	queryIndex := bt.queryIndex
	inRef2 := bt.refIndex > ref1Size
	var ref1Index, ref2Index int
	if inRef2 {
		ref2Index = bt.refIndex - ref1Size
	} else {
		ref1Index = bt.refIndex
	}
	state := stateMatch

	var revAlign1, revAlign2 []OpRun
	ref2Begin := 0
	jumpQueryPos := querySize
	usedRef2 := false

	// Right-side soft-clip: bases past the alignment's terminal cell.
	if bt.queryIndex < querySize {
		if inRef2 {
			appendRun(&revAlign2, 'S', querySize-bt.queryIndex)
		} else {
			appendRun(&revAlign1, 'S', querySize-bt.queryIndex)
		}
	}

	for !(state == stateMatch && queryIndex == 0) {
		if state == stateMatch && ((inRef2 && ref2Index == 0) || (!inRef2 && ref1Index == 0)) {
			// Left soft-clip: the remaining query bases were charged offEdge in
			// the reference's initial column.
			if inRef2 {
				appendRun(&revAlign2, 'S', queryIndex)
			} else {
				appendRun(&revAlign1, 'S', queryIndex)
			}
			break
		}
		switch state {
		case stateMatch:
			var tag alignState
			if inRef2 {
				tag = t.ptrAt2(queryIndex, ref2Index).match()
			} else {
				tag = t.ptrAt1(queryIndex, ref1Index).match()
			}
			if inRef2 {
				appendRun(&revAlign2, 'M', 1)
			} else {
				appendRun(&revAlign1, 'M', 1)
			}
			queryIndex--
			if inRef2 {
				ref2Index--
			} else {
				ref1Index--
			}
			if inRef2 && tag == stateJump {
				ref2Begin = ref2Index
			}
			state = tag

		case stateDel:
			var tag alignState
			if inRef2 {
				tag = t.ptrAt2(queryIndex, ref2Index).del()
				ref2Index--
				appendRun(&revAlign2, 'D', 1)
			} else {
				tag = t.ptrAt1(queryIndex, ref1Index).del()
				ref1Index--
				appendRun(&revAlign1, 'D', 1)
			}
			if tag == stateJump {
				panic(&InternalInvariantError{Msg: "jumpalign: DEL cannot be exited from JUMP"})
			}
			state = tag

		case stateIns:
			var tag alignState
			if inRef2 {
				tag = t.ptrAt2(queryIndex, ref2Index).ins()
				appendRun(&revAlign2, 'I', 1)
			} else {
				tag = t.ptrAt1(queryIndex, ref1Index).ins()
				appendRun(&revAlign1, 'I', 1)
			}
			queryIndex--
			if inRef2 && tag == stateJump {
				ref2Begin = ref2Index
			}
			state = tag

		case stateJump:
			if inRef2 {
				if ref2Index == 0 {
					inRef2 = false
					usedRef2 = true
					ref1Index = ref1Size
					jumpQueryPos = queryIndex
					state = t.ptrAt1(queryIndex, ref1Index).jump()
				} else {
					ref2Index--
				}
			} else {
				tag := t.ptrAt1(queryIndex, ref1Index).jump()
				if tag == stateJump {
					if ref1Index == 0 {
						panic(&InternalInvariantError{Msg: "jumpalign: JUMP underflowed ref1"})
					}
					ref1Index--
				} else {
					state = tag
				}
			}

		default:
			panic(&InternalInvariantError{Msg: "jumpalign: corrupt pointer tag in backtrace"})
		}
	}

	reverseRuns(revAlign1)
	reverseRuns(revAlign2)

	jumpInsertLen := 0
	if len(revAlign2) > 0 && revAlign2[0].Op == 'I' {
		jumpInsertLen = revAlign2[0].N
	}

	return Result{
		Score:         bt.best,
		Align1:        revAlign1,
		Align2:        revAlign2,
		Ref1Begin:     uint(ref1Index),
		Ref2Begin:     uint(ref2Begin),
		JumpQueryPos:  jumpQueryPos,
		JumpInsertLen: uint(jumpInsertLen),
		UsedRef2:      usedRef2,
	}
}
