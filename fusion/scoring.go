package fusion

// Scoring is the scoring scheme used by the jump alignment Engine. It is
// immutable once constructed.
//
// Implementations are free to enforce Match >= 0 and Mismatch, Open, Extend,
// OffEdge, Jump <= 0, but the recurrence in align.go is well-defined for any
// combination of signed values.
type Scoring struct {
	match    int
	mismatch int
	open     int
	extend   int
	offEdge  int
	jump     int
}

// NewScoring constructs a Scoring from six signed penalties/rewards.
//
//	match    reward when query symbol == ref symbol
//	mismatch penalty on symbol disagreement
//	open     cost to open a gap (charged once)
//	extend   cost per gap symbol, including the first
//	offEdge  per-symbol cost when query extends past either end of a reference
//	jump     one-time cost to transition from ref1 to ref2
func NewScoring(match, mismatch, open, extend, offEdge, jump int) Scoring {
	return Scoring{
		match:    match,
		mismatch: mismatch,
		open:     open,
		extend:   extend,
		offEdge:  offEdge,
		jump:     jump,
	}
}

// Match returns the reward for a matching symbol pair.
func (s Scoring) Match() int { return s.match }

// Mismatch returns the penalty for a mismatching symbol pair.
func (s Scoring) Mismatch() int { return s.mismatch }

// Open returns the gap-open penalty.
func (s Scoring) Open() int { return s.open }

// Extend returns the per-symbol gap-extend penalty.
func (s Scoring) Extend() int { return s.extend }

// OffEdge returns the per-symbol soft-clip penalty.
func (s Scoring) OffEdge() int { return s.offEdge }

// Jump returns the one-time reference-switch penalty.
func (s Scoring) Jump() int { return s.jump }

// subst returns the match or mismatch score for a pair of symbols.
func (s Scoring) subst(q, r byte) int {
	if q == r {
		return s.match
	}
	return s.mismatch
}

// badScore is the sentinel used to forbid a start/transition. It is large
// enough in magnitude that badScore*(querySize+refSize) does not overflow a
// 64-bit int for any alignment this engine is expected to run on (see
// spec.md §7).
const badScore = -10000
