package bag

import (
	"testing"

	"github.com/grailbio/testutil/expect"
)

func TestGraphAddAccumulatesWeightAndJunctions(t *testing.T) {
	g := NewGraph()
	g.Add("GENE1>GENE2", JunctionKey{Ref1Pos: 100, Ref2Pos: 50}, "read1")
	g.Add("GENE1>GENE2", JunctionKey{Ref1Pos: 100, Ref2Pos: 50}, "read2")
	g.Add("GENE1>GENE2", JunctionKey{Ref1Pos: 101, Ref2Pos: 50}, "read3")

	e := g.Edge("GENE1>GENE2")
	expect.EQ(t, e.Weight, 3)
	expect.EQ(t, len(e.Junctions), 2)
	expect.EQ(t, e.Junctions[JunctionKey{Ref1Pos: 100, Ref2Pos: 50}].Hits, 2)
	expect.EQ(t, e.Junctions[JunctionKey{Ref1Pos: 101, Ref2Pos: 50}].Hits, 1)
}

func TestGraphAddDedupsRepeatedEvidence(t *testing.T) {
	g := NewGraph()
	junction := JunctionKey{Ref1Pos: 10, Ref2Pos: 20}
	g.Add("GENE1>GENE2", junction, "same-read")
	g.Add("GENE1>GENE2", junction, "same-read")
	g.Add("GENE1>GENE2", junction, "same-read")

	e := g.Edge("GENE1>GENE2")
	expect.EQ(t, e.Weight, 1)
	expect.EQ(t, e.Junctions[junction].Hits, 1)
}

func TestGraphEdgeMissing(t *testing.T) {
	g := NewGraph()
	expect.EQ(t, g.Edge("NOPE>NOPE"), (*Edge)(nil))
}

func TestGraphTrimRemovesLightEdges(t *testing.T) {
	g := NewGraph()
	g.Add("HEAVY>EDGE", JunctionKey{}, "r1")
	g.Add("HEAVY>EDGE", JunctionKey{}, "r2")
	g.Add("LIGHT>EDGE", JunctionKey{}, "r1")

	g.Trim(2)

	expect.True(t, g.Edge("HEAVY>EDGE") != nil)
	expect.True(t, g.Edge("LIGHT>EDGE") == nil)
}

func TestGraphSortedEdgesOrdersByWeightThenKey(t *testing.T) {
	g := NewGraph()
	g.Add("B>C", JunctionKey{}, "r1")
	g.Add("A>B", JunctionKey{}, "r1")
	g.Add("A>B", JunctionKey{}, "r2")
	g.Add("Z>Z", JunctionKey{}, "r1")
	g.Add("Z>Z", JunctionKey{}, "r2")

	// "A>B" and "Z>Z" both have weight 2; tie breaks lexicographically.
	expect.EQ(t, g.SortedEdges(), []EdgeKey{"A>B", "Z>Z", "B>C"})
}
