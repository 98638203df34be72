package universe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"star-router/internal/graph"
	"star-router/internal/route"
	"star-router/internal/spatial"
	"star-router/internal/starmap"
)

func testBundle() *Bundle {
	systems := map[starmap.SystemID]*starmap.System{
		1: {ID: 1, Name: "A", Position: &starmap.Position{X: 0}},
		2: {ID: 2, Name: "B", Position: &starmap.Position{X: 1}},
		3: {ID: 3, Name: "C", Position: &starmap.Position{X: 2}},
	}
	adjacency := map[starmap.SystemID][]starmap.SystemID{
		1: {2}, 2: {1, 3}, 3: {2},
	}
	return NewBundle(starmap.New(systems, adjacency))
}

func TestIndexBuiltOnceAndShared(t *testing.T) {
	b := testBundle()

	assert.Nil(t, b.Positions(), "no index before first use")

	first := b.Index()
	require.NotNil(t, first)
	assert.Equal(t, 3, first.Len())
	assert.Same(t, first, b.Index(), "second call returns the cached index")
	assert.NotNil(t, b.Positions())
}

func TestIndexCarriesDatasetMetadata(t *testing.T) {
	b := testBundle()
	b.m.ReleaseTag = "2026-08-01"

	meta := b.Index().Metadata()
	require.NotNil(t, meta)
	assert.Equal(t, b.m.Fingerprint, meta.DatasetChecksum)
	assert.Equal(t, "2026-08-01", meta.ReleaseTag)
}

func TestGraphCachedPerMode(t *testing.T) {
	b := testBundle()

	gate := b.Graph(graph.GateOnly, graph.BuildOptions{})
	hybrid := b.Graph(graph.Hybrid, graph.BuildOptions{})
	assert.NotSame(t, gate, hybrid)
	assert.Same(t, gate, b.Graph(graph.GateOnly, graph.BuildOptions{}))
	assert.Same(t, hybrid, b.Graph(graph.Hybrid, graph.BuildOptions{}))

	// A different neighbor bound is a different artifact.
	other := b.Graph(graph.Hybrid, graph.BuildOptions{MaxSpatialNeighbors: 3})
	assert.NotSame(t, hybrid, other)
}

func TestGraphCachedPerFilter(t *testing.T) {
	b := testBundle()

	plain := b.Graph(graph.SpatialOnly, graph.BuildOptions{})
	capped := b.Graph(graph.SpatialOnly, graph.BuildOptions{MaxJump: 1.5})
	assert.NotSame(t, plain, capped, "a jump cap changes the built graph")
	assert.Same(t, capped, b.Graph(graph.SpatialOnly, graph.BuildOptions{MaxJump: 1.5}))

	maxT := 300.0
	cooled := b.Graph(graph.SpatialOnly, graph.BuildOptions{MaxTemperature: &maxT})
	assert.NotSame(t, plain, cooled, "a temperature cap changes the built graph")
	assert.NotSame(t, capped, cooled)
}

func TestConcurrentBuildsCoalesce(t *testing.T) {
	b := testBundle()

	const workers = 16
	results := make([]*graph.Graph, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = b.Graph(graph.Hybrid, graph.BuildOptions{})
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestAdoptIndex(t *testing.T) {
	b := testBundle()
	external := spatial.Build(spatial.PointsFromStarmap(b.m))

	b.AdoptIndex(external)
	assert.Same(t, external, b.Index())
}

func TestBundleServesPlanRoute(t *testing.T) {
	b := testBundle()

	plan, err := route.PlanRoute(b, route.Request{Start: "A", Goal: "C", Algorithm: route.Bfs})
	require.NoError(t, err)
	assert.Equal(t, 2, plan.Hops)
}
