package fusion

type Opts struct {
	UMIInRead bool
	UMIInName bool
	// LowComplexityFraction determines whether a fragment (or read) should be
	// dropped because it contains too many repetition of the same base types.  If
	// LowComplexityFraction of bases in a fragment are such repetitions, it is
	// dropped without further analyses.
	LowComplexityFraction float64
	// KmerLength is the length of kmer used to match DNA sequences.
	KmerLength int
	Denovo     bool
	// Is this an unstranded RNA-seq library? Default is stranded.
	UnstrandedPrep bool

	// maxGap specifies the max gap allowed between
	// two consecutive ranges (this is to tolerate sequence errors).
	MaxGap int

	// MaxHomology is the max overlap allowed b/w genes in a fusion
	MaxHomology int
	// Min base evidence for a gene in the fusion.
	MinSpan int

	// MaxGenesPerKmer caps the number of genes a kmer belongs to, default 5. Used to
	// be --cap flag in the C++ code.
	MaxGenesPerKmer int

	// MaxGeneCandidatesPerFragment caps the number of genes considered for each
	// fragment. Doing so will reduce the number of pairs that will be processed
	// for every read.
	//
	// TODO(saito,xyang) report read through events but differentiating this from
	// the overlapping genes
	MaxGeneCandidatesPerFragment int

	// MaxProximityDistance is the distance cutoff below which a candidate will be
	// rejected as a readthrough event
	MaxProximityDistance int

	// MaxProximityGenes is number of genes separating a gene pair (If on the
	// same chromsosome) below which they will be flagged as read-through events.
	MaxProximityGenes int

	// MaxGenePartners caps number of partners a gene can have
	// this is used in the filtering stage.
	MaxGenePartners int

	// Minimum number of supporting reads required
	// to consider a fusion
	MinReadSupport int

	// EnableJumpAlign turns on breakpoint refinement via Engine.Align
	// (postprocess.go's RefineFusionBreakpoint) for candidates surviving the
	// k-mer based filters above.
	EnableJumpAlign bool

	// JumpAlignMatch/Mismatch/Open/Extend/OffEdge/Jump parameterize the
	// Scoring passed to NewEngine when EnableJumpAlign is set.
	JumpAlignMatch    int
	JumpAlignMismatch int
	JumpAlignOpen     int
	JumpAlignExtend   int
	JumpAlignOffEdge  int
	JumpAlignJump     int
}

// JumpAlignScoring builds the Scoring described by this Opts' JumpAlign*
// fields.
func (o Opts) JumpAlignScoring() Scoring {
	return NewScoring(
		o.JumpAlignMatch,
		o.JumpAlignMismatch,
		o.JumpAlignOpen,
		o.JumpAlignExtend,
		o.JumpAlignOffEdge,
		o.JumpAlignJump,
	)
}

// DefaultOpts sets the default values to Opts.
var DefaultOpts = Opts{
	UMIInRead:                    false,  // Go: -umi-in-read, C++: --umi_in_read
	UMIInName:                    false,  // Go: -umi-in-name, C++: --umi_in_name
	KmerLength:                   19,     // Go, C++: -k
	UnstrandedPrep:               true,   // Go: no flag, C++: --unstranded-library default: false
	MaxGap:                       9,      // Go, C++ no flag. in C++,the value is hardcoded to kmerLength/2
	MaxHomology:                  15,     // Go: -max-homology, C++: --max_homology
	MinSpan:                      25,     // Go: -min-span, C++: --min_span
	LowComplexityFraction:        0.9,    // Go: no flag, C++: -lc (specifies percentage, not fraction)
	MaxGenesPerKmer:              5,      // Go: -max-genes-per-kmer, C++: --cap
	MaxGeneCandidatesPerFragment: 5,      // Go, C++, no flag. In C++, the value is hardcoded to 5.
	MaxProximityDistance:         100000, // Go: --max-proximity-distance, C++: --proximity_dist
	MaxProximityGenes:            5,      // Go: --max-proximity-genes, C++: --proxmitity_num
	MaxGenePartners:              5,      // Go: no flag, C++: --cap_genepartner
	MinReadSupport:               2,      // Go: no flag, C++: --min_read_support.

	EnableJumpAlign:   false, // Go: -jump-align, no C++ equivalent flag (always on there).
	JumpAlignMatch:    1,     // Go: -jump-align-match, C++: opt_t.m default (init_opt).
	JumpAlignMismatch: -2,    // Go: -jump-align-mismatch, C++: opt_t.u default.
	JumpAlignOpen:     -5,    // Go: -jump-align-open, C++: opt_t.o default.
	JumpAlignExtend:   -1,    // Go: -jump-align-extend, C++: opt_t.e default.
	JumpAlignOffEdge:  -1,    // Go: -jump-align-off-edge, no named C++ default; same magnitude as extend.
	JumpAlignJump:     -10,   // Go: -jump-align-jump, C++: opt_t.j default.
}
