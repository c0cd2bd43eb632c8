package fusion

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestFragment(t *testing.T) {
	frag := Fragment{
		Name:  "f0",
		R1Seq: "AACC",
		R2Seq: "GGTT",
		kmers: nil,
	}
	expect.EQ(t, frag.SubSeq(newCrossReadPosRange(0, 3)), "AAC")
	expect.EQ(t, frag.SubSeq(newCrossReadPosRange(0, newR2Pos(1))), "AACCG")
	expect.EQ(t, frag.SubSeq(newCrossReadPosRange(newR2Pos(0), newR2Pos(3))), "GGT")
}

func TestFragmentSpanningRange(t *testing.T) {
	frag := Fragment{R1Seq: "AACC", R2Seq: "GGTT"}
	fi := FusionInfo{
		G1Range: newCrossReadPosRange(0, 2),
		G2Range: newCrossReadPosRange(newR2Pos(1), newR2Pos(3)),
	}
	span := frag.SpanningRange(fi)
	expect.EQ(t, span, newCrossReadPosRange(0, newR2Pos(3)))
	expect.EQ(t, frag.SubSeq(span), "AACCGGT")

	// Order of G1Range/G2Range shouldn't matter.
	fi.G1Range, fi.G2Range = fi.G2Range, fi.G1Range
	expect.EQ(t, frag.SpanningRange(fi), span)
}
