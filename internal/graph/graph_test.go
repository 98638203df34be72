package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"star-router/internal/starmap"
)

// lineMap is four systems on a line, 1-2-3 gated in a chain, 4 reachable
// only by jump drive. System 5 has no coordinates and gates to 1.
func lineMap() *starmap.Starmap {
	hot := 400.0
	systems := map[starmap.SystemID]*starmap.System{
		1: {ID: 1, Name: "A", Position: &starmap.Position{X: 0}},
		2: {ID: 2, Name: "B", Position: &starmap.Position{X: 1}},
		3: {ID: 3, Name: "C", Position: &starmap.Position{X: 2},
			Metadata: starmap.Metadata{MinExternalTemp: &hot}},
		4: {ID: 4, Name: "D", Position: &starmap.Position{X: 4}},
		5: {ID: 5, Name: "E"},
	}
	adjacency := map[starmap.SystemID][]starmap.SystemID{
		1: {2, 5},
		2: {1, 3},
		3: {2},
		5: {1},
	}
	return starmap.New(systems, adjacency)
}

func TestBuildGateGraph(t *testing.T) {
	g := BuildGateGraph(lineMap())
	assert.Equal(t, GateOnly, g.Mode())

	edges := g.Neighbours(1)
	require.Len(t, edges, 2)
	assert.Equal(t, starmap.SystemID(2), edges[0].To)
	assert.InDelta(t, 1.0, edges[0].Distance, 1e-9)

	// Gate to the coordless system exists but has no distance.
	assert.Equal(t, starmap.SystemID(5), edges[1].To)
	assert.False(t, edges[1].HasDistance())

	// System 4 has no gates at all.
	assert.Empty(t, g.Neighbours(4))
}

func TestBuildSpatialGraphSymmetry(t *testing.T) {
	g := BuildSpatialGraph(lineMap(), BuildOptions{MaxSpatialNeighbors: 2})
	assert.Equal(t, SpatialOnly, g.Mode())

	// Every spatial edge has a mirror.
	for _, from := range []starmap.SystemID{1, 2, 3, 4} {
		for _, e := range g.Neighbours(from) {
			back, ok := g.EdgeBetween(e.To, from)
			require.True(t, ok, "edge %d->%d has no mirror", from, e.To)
			assert.Equal(t, e.Distance, back.Distance)
		}
	}

	// The coordless system gets no spatial edges in either direction.
	assert.Empty(t, g.Neighbours(5))
	for _, from := range []starmap.SystemID{1, 2, 3, 4} {
		_, ok := g.EdgeBetween(from, 5)
		assert.False(t, ok)
	}
}

func TestBuildSpatialGraphMaxJump(t *testing.T) {
	g := BuildSpatialGraph(lineMap(), BuildOptions{MaxJump: 1.5})

	// 4 sits 2.0 away from 3 and further from everything else.
	assert.Empty(t, g.Neighbours(4))
	_, ok := g.EdgeBetween(3, 4)
	assert.False(t, ok)

	// Close pairs survive the cap.
	_, ok = g.EdgeBetween(1, 2)
	assert.True(t, ok)
}

func TestBuildSpatialGraphTemperatureCap(t *testing.T) {
	maxT := 300.0
	g := BuildSpatialGraph(lineMap(), BuildOptions{MaxTemperature: &maxT})

	// System 3 is hotter than the cap: nothing may target it, and
	// symmetrization means it keeps no edges of its own either.
	assert.Empty(t, g.Neighbours(3))
	for _, from := range []starmap.SystemID{1, 2, 4} {
		_, ok := g.EdgeBetween(from, 3)
		assert.False(t, ok, "edge %d->3 must not exist", from)
	}

	// Unknown-temperature systems are unaffected.
	_, ok := g.EdgeBetween(1, 2)
	assert.True(t, ok)
}

func TestBuildHybridGraph(t *testing.T) {
	g := BuildHybridGraph(lineMap(), BuildOptions{})
	assert.Equal(t, Hybrid, g.Mode())

	// 1 and 2 are connected both by gate and by jump; both kinds survive.
	kinds := map[EdgeKind]bool{}
	for _, e := range g.Neighbours(1) {
		if e.To == 2 {
			kinds[e.Kind] = true
		}
	}
	assert.True(t, kinds[Gate])
	assert.True(t, kinds[Spatial])

	// 4 is only reachable spatially, but it is reachable.
	edges := g.Neighbours(4)
	require.NotEmpty(t, edges)
	for _, e := range edges {
		assert.Equal(t, Spatial, e.Kind)
	}
}

func TestEdgeBetweenPicksCheapest(t *testing.T) {
	g := &Graph{mode: Hybrid, adjacency: map[starmap.SystemID][]Edge{
		1: {
			{From: 1, To: 2, Kind: Gate, Distance: math.NaN()},
			{From: 1, To: 2, Kind: Spatial, Distance: 3.5},
		},
	}}

	e, ok := g.EdgeBetween(1, 2)
	require.True(t, ok)
	assert.Equal(t, Spatial, e.Kind)
	assert.Equal(t, 3.5, e.Distance)
}

func TestEdgeBetweenFuncSkipsFilteredEdges(t *testing.T) {
	g := &Graph{mode: Hybrid, adjacency: map[starmap.SystemID][]Edge{
		1: {
			{From: 1, To: 2, Kind: Gate, Distance: 4.0},
			{From: 1, To: 2, Kind: Spatial, Distance: 3.5},
		},
	}}

	// The cheapest edge loses when the predicate rejects it.
	e, ok := g.EdgeBetweenFunc(1, 2, func(e Edge) bool { return e.Kind == Gate })
	require.True(t, ok)
	assert.Equal(t, Gate, e.Kind)
	assert.Equal(t, 4.0, e.Distance)

	// Rejecting everything finds nothing.
	_, ok = g.EdgeBetweenFunc(1, 2, func(Edge) bool { return false })
	assert.False(t, ok)

	// A nil predicate behaves like EdgeBetween.
	e, ok = g.EdgeBetweenFunc(1, 2, nil)
	require.True(t, ok)
	assert.Equal(t, Spatial, e.Kind)
}

func TestNeighboursDeterministic(t *testing.T) {
	m := lineMap()
	a := BuildHybridGraph(m, BuildOptions{})
	b := BuildHybridGraph(m, BuildOptions{})
	for _, id := range []starmap.SystemID{1, 2, 3, 4, 5} {
		assert.Equal(t, a.Neighbours(id), b.Neighbours(id))
	}
}
