package fusion

// alignState names one of the four DP states tracked per cell. The order
// here (MATCH, DEL, INS, JUMP) is load-bearing: spec.md's tie-break rule
// ("the first state in the max order MATCH, DEL, INS, JUMP") is implemented
// directly in terms of this ordering by firstMax3/firstMax4 below.
type alignState uint8

const (
	stateMatch alignState = iota
	stateDel
	stateIns
	stateJump
)

func (s alignState) String() string {
	switch s {
	case stateMatch:
		return "MATCH"
	case stateDel:
		return "DEL"
	case stateIns:
		return "INS"
	case stateJump:
		return "JUMP"
	default:
		return "INVALID"
	}
}

// cellScores holds the four state scores for one (query,ref) cell.
type cellScores struct {
	match, del, ins, jump int
}

// ptrCell packs the four 2-bit predecessor tags for one DP cell into a
// single byte (spec.md §5: "two bits per state × four states per cell = one
// byte").
type ptrCell uint8

func makePtrCell(m, d, i, j alignState) ptrCell {
	return ptrCell(m) | ptrCell(d)<<2 | ptrCell(i)<<4 | ptrCell(j)<<6
}

func (p ptrCell) match() alignState { return alignState(p & 0x3) }
func (p ptrCell) del() alignState   { return alignState((p >> 2) & 0x3) }
func (p ptrCell) ins() alignState   { return alignState((p >> 4) & 0x3) }
func (p ptrCell) jump() alignState  { return alignState((p >> 6) & 0x3) }

// dpTableau is the per-call DP workspace: two rolling score columns (only the
// current and previous ref column are ever needed to fill the matrix) and
// two full pointer matrices, one per reference segment, retained for
// backtrace. Buffers are grown on demand and never shrunk, so that a single
// Engine amortizes allocation across repeated Align calls (spec.md §5
// "Resources").
type dpTableau struct {
	querySize          int
	ref1Size, ref2Size int

	colBufA, colBufB []cellScores // len >= querySize+1
	cur, prev        []cellScores // aliases into colBufA/colBufB, swapped per ref column

	ptr1 []ptrCell // (querySize+1) * (ref1Size+1), row-major by ref index
	ptr2 []ptrCell // (querySize+1) * (ref2Size+1)
}

// resize grows the tableau's buffers to accommodate the given sizes. It is
// idempotent and never shrinks previously allocated capacity.
func (t *dpTableau) resize(querySize, ref1Size, ref2Size int) {
	t.querySize, t.ref1Size, t.ref2Size = querySize, ref1Size, ref2Size

	colLen := querySize + 1
	if cap(t.colBufA) < colLen {
		t.colBufA = make([]cellScores, colLen)
	} else {
		t.colBufA = t.colBufA[:colLen]
	}
	if cap(t.colBufB) < colLen {
		t.colBufB = make([]cellScores, colLen)
	} else {
		t.colBufB = t.colBufB[:colLen]
	}
	t.cur, t.prev = t.colBufA, t.colBufB

	ptr1Len := (querySize + 1) * (ref1Size + 1)
	if cap(t.ptr1) < ptr1Len {
		t.ptr1 = make([]ptrCell, ptr1Len)
	} else {
		t.ptr1 = t.ptr1[:ptr1Len]
	}
	ptr2Len := (querySize + 1) * (ref2Size + 1)
	if cap(t.ptr2) < ptr2Len {
		t.ptr2 = make([]ptrCell, ptr2Len)
	} else {
		t.ptr2 = t.ptr2[:ptr2Len]
	}
}

// swapCols swaps the current/previous rolling score columns, as done after
// every reference symbol is consumed.
func (t *dpTableau) swapCols() {
	t.cur, t.prev = t.prev, t.cur
}

func (t *dpTableau) ptrAt1(queryIndex, refIndex int) *ptrCell {
	return &t.ptr1[refIndex*(t.querySize+1)+queryIndex]
}

func (t *dpTableau) ptrAt2(queryIndex, refIndex int) *ptrCell {
	return &t.ptr2[refIndex*(t.querySize+1)+queryIndex]
}

// firstMax3 returns the best of three candidate scores and the state of the
// first one to achieve it, in the fixed order (s0, s1, s2). The caller
// supplies the states corresponding to each candidate slot.
func firstMax3(v0 int, s0 alignState, v1 int, s1 alignState, v2 int, s2 alignState) (int, alignState) {
	best, state := v0, s0
	if v1 > best {
		best, state = v1, s1
	}
	if v2 > best {
		best, state = v2, s2
	}
	return best, state
}

// firstMax4 is firstMax3 extended to four candidates.
func firstMax4(v0 int, s0 alignState, v1 int, s1 alignState, v2 int, s2 alignState, v3 int, s3 alignState) (int, alignState) {
	best, state := v0, s0
	if v1 > best {
		best, state = v1, s1
	}
	if v2 > best {
		best, state = v2, s2
	}
	if v3 > best {
		best, state = v3, s3
	}
	return best, state
}
