package fusion

// PreconditionError is raised (via panic) when Align is called with an
// empty query or reference. This is a programming error, not a recoverable
// I/O condition (spec.md §7).
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// InternalInvariantError indicates a pointer tag outside
// {MATCH, DEL, INS, JUMP} was encountered during backtrace, i.e. a corrupt
// tableau (spec.md §7). It can only happen as the result of an Engine bug.
type InternalInvariantError struct {
	Msg string
}

func (e *InternalInvariantError) Error() string { return e.Msg }

// OpRun is one run of a CIGAR-like alignment operation: Op is one of
// 'M' (match/mismatch), 'I' (query-consuming gap), 'D' (reference-consuming
// gap), or 'S' (soft-clip).
type OpRun struct {
	Op byte
	N  int
}

// Result is the output of a single Align call (spec.md §6).
type Result struct {
	// Score is the total score of the best alignment found.
	Score int
	// Align1 is the op-run list against ref1. It may be empty if the jump is
	// taken at queryIndex 0.
	Align1 []OpRun
	// Align2 is the op-run list against ref2. It may be empty if the jump is
	// taken at queryIndex == len(query).
	Align2 []OpRun
	// Ref1Begin is the 0-based start of the alignment in ref1.
	Ref1Begin uint
	// Ref2Begin is the 0-based start of the alignment in ref2. It is only
	// meaningful when UsedRef2 is true.
	Ref2Begin uint
	// JumpQueryPos is the query position at which the jump from ref1 to ref2
	// was taken. It may equal len(query) if the jump occurs at end-of-query.
	JumpQueryPos int
	// JumpInsertLen is the number of I-ops attached to the junction, i.e. the
	// breakend insertion length.
	JumpInsertLen uint
	// UsedRef2 reports whether the alignment actually used both references:
	// a jump from ref1 into ref2 was structurally taken, even if
	// JumpInsertLen==0 and Align2 consists solely of matches starting right
	// after the jump. An alignment that lies wholly in ref2 reports false.
	UsedRef2 bool
}

// Engine runs the gapped jump alignment recurrence (spec.md) against a fixed
// Scoring and, optionally, a GeneModel constraining where the jump may
// occur. An Engine is not safe for concurrent Align calls; distinct Engine
// instances are fully independent (spec.md §5).
type Engine struct {
	scoring Scoring
	model   GeneModel
	t       dpTableau
}

// NewEngine creates an unconstrained jump alignment Engine.
func NewEngine(scoring Scoring) *Engine {
	return &Engine{scoring: scoring}
}

// NewConstrainedEngine creates an Engine whose jump transitions are
// restricted to the positions named by model (spec.md §4.5). A GeneModel
// with empty ExitSet1/EntrySet2 degenerates to the unconstrained recurrence.
func NewConstrainedEngine(scoring Scoring, model GeneModel) *Engine {
	return &Engine{scoring: scoring, model: model}
}

// Align computes the optimal single-jump alignment of query against ref1
// then ref2. query, ref1, and ref2 must all be non-empty; violating this is
// a programming error and panics with *PreconditionError.
func (e *Engine) Align(query, ref1, ref2 []byte) Result {
	if len(query) == 0 {
		panic(&PreconditionError{Msg: "jumpalign: empty query"})
	}
	if len(ref1) == 0 {
		panic(&PreconditionError{Msg: "jumpalign: empty ref1"})
	}
	if len(ref2) == 0 {
		panic(&PreconditionError{Msg: "jumpalign: empty ref2"})
	}

	querySize, ref1Size, ref2Size := len(query), len(ref1), len(ref2)
	scores := e.scoring
	t := &e.t
	t.resize(querySize, ref1Size, ref2Size)

	var bt backtraceDescriptor

	// Initial row: query may soft-clip entirely off the left edge of ref1;
	// DEL/INS/JUMP cannot be the starting state (spec.md §3 invariants).
	for q := 0; q <= querySize; q++ {
		t.cur[q] = cellScores{match: q * scores.offEdge, del: badScore, ins: badScore, jump: badScore}
	}

	// --- Reference A pass ---
	for r1 := 0; r1 < ref1Size; r1++ {
		t.swapCols()
		cur, prev := t.cur, t.prev

		cur[0] = cellScores{match: 0, del: badScore, ins: badScore, jump: badScore}

		exitAllowed := e.model.allowExit(r1)

		for q := 0; q < querySize; q++ {
			ptr := t.ptrAt1(q+1, r1+1)

			// MATCH(q+1, r1+1)
			svMatch := prev[q]
			mScore, mState := firstMax3(
				svMatch.match, stateMatch,
				svMatch.del, stateDel,
				svMatch.ins, stateIns,
			)
			mScore += scores.subst(query[q], ref1[r1])

			// DEL(q+1, r1+1): ref-consuming gap, predecessor is the same
			// query index in the previous ref column.
			svDel := prev[q+1]
			dScore, dState := firstMax3(
				svDel.match+scores.open, stateMatch,
				svDel.del, stateDel,
				svDel.ins, stateIns,
			)
			dScore += scores.extend
			if q == 0 {
				dScore += badScore
			}

			// INS(q+1, r1+1): query-consuming gap, predecessor is the
			// previous query index in the same ref column.
			svIns := cur[q]
			iScore, iState := firstMax3(
				svIns.match+scores.open, stateMatch,
				badScore, stateDel,
				svIns.ins, stateIns,
			)
			iScore += scores.extend
			if q == 0 {
				iScore += badScore
			}

			// JUMP(q+1, r1+1): reachable only from this cell's own MATCH or
			// INS (paying the jump penalty), or carried forward from the
			// previous ref column's JUMP at the same query index.
			jumpFromMatch, jumpFromIns := badScore, badScore
			if exitAllowed {
				jumpFromMatch = mScore + scores.jump
				jumpFromIns = iScore + scores.jump
			}
			jScore, jState := firstMax4(
				jumpFromMatch, stateMatch,
				badScore, stateDel,
				jumpFromIns, stateIns,
				svDel.jump, stateJump,
			)

			cur[q+1] = cellScores{match: mScore, del: dScore, ins: iScore, jump: jScore}
			*ptr = makePtrCell(mState, dState, iState, jState)
		}

		// Candidate end-of-ref1 anchor: a no-jump alignment ending exactly
		// at the end of ref1.
		bt.update(cur[querySize].match, r1+1, querySize)
	}

	// Query may fall off the end of ref1 entirely (right soft-clip) without
	// ever reaching ref2.
	for q := 0; q <= querySize; q++ {
		bt.update(t.cur[q].match+(querySize-q)*scores.offEdge, ref1Size, q)
	}

	// --- Cross-boundary: JUMP carries forward, MATCH/DEL/INS reset ---
	for q := 0; q <= querySize; q++ {
		t.cur[q].match = q * scores.offEdge
		t.cur[q].del = badScore
		t.cur[q].ins = badScore
		// t.cur[q].jump intentionally left untouched: it is ref1's final
		// JUMP vector, which becomes ref2's column-0 JUMP vector.
	}

	// --- Reference B pass ---
	for r2 := 0; r2 < ref2Size; r2++ {
		t.swapCols()
		cur, prev := t.cur, t.prev

		cur[0] = cellScores{match: 0, del: badScore, ins: badScore, jump: badScore}

		entryAllowed := e.model.allowEntry(r2)

		for q := 0; q < querySize; q++ {
			ptr := t.ptrAt2(q+1, r2+1)

			// MATCH(q+1, r2+1) additionally accepts JUMP as a predecessor:
			// entering MATCH from JUMP pays no extra cost.
			svMatch := prev[q]
			jumpIntoMatch := badScore
			if entryAllowed {
				jumpIntoMatch = svMatch.jump
			}
			mScore, mState := firstMax4(
				svMatch.match, stateMatch,
				svMatch.del, stateDel,
				svMatch.ins, stateIns,
				jumpIntoMatch, stateJump,
			)
			mScore += scores.subst(query[q], ref2[r2])

			// DEL(q+1, r2+1): unchanged from the ref1 recurrence.
			svDel := prev[q+1]
			dScore, dState := firstMax3(
				svDel.match+scores.open, stateMatch,
				svDel.del, stateDel,
				svDel.ins, stateIns,
			)
			dScore += scores.extend
			if q == 0 {
				dScore += badScore
			}

			// INS(q+1, r2+1) additionally accepts JUMP as a predecessor,
			// waiving the gap-open penalty: a breakend insertion at the
			// junction should not pay open on top of the jump penalty.
			svIns := cur[q]
			jumpIntoIns := badScore
			if entryAllowed {
				jumpIntoIns = svIns.jump
			}
			iScore, iState := firstMax4(
				svIns.match+scores.open, stateMatch,
				badScore, stateDel,
				svIns.ins, stateIns,
				jumpIntoIns, stateJump,
			)
			iScore += scores.extend
			if q == 0 {
				iScore += badScore
			}

			// JUMP(q+1, r2+1): pure pass-through. The pointer is always
			// JUMP; there is no further branching once in ref2's JUMP
			// state (spec.md §4.3, §9 "Jump state in ref B").
			jScore := svDel.jump

			cur[q+1] = cellScores{match: mScore, del: dScore, ins: iScore, jump: jScore}
			*ptr = makePtrCell(mState, dState, iState, stateJump)
		}

		bt.update(cur[querySize].match, ref1Size+r2+1, querySize)
	}

	for q := 0; q <= querySize; q++ {
		bt.update(t.cur[q].match+(querySize-q)*scores.offEdge, ref1Size+ref2Size, q)
	}

	return e.backtrace(query, ref1, ref2, bt)
}
