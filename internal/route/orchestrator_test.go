package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"star-router/internal/graph"
	"star-router/internal/starmap"
)

// buildProvider is a Provider that rebuilds graphs on every call.
type buildProvider struct {
	m *starmap.Starmap
}

func (p *buildProvider) Starmap() *starmap.Starmap { return p.m }
func (p *buildProvider) Positions() PositionSource { return nil }
func (p *buildProvider) Graph(mode graph.Mode, opts graph.BuildOptions) *graph.Graph {
	switch mode {
	case graph.GateOnly:
		return graph.BuildGateGraph(p.m)
	case graph.SpatialOnly:
		return graph.BuildSpatialGraph(p.m, opts)
	default:
		return graph.BuildHybridGraph(p.m, opts)
	}
}

func TestPlanRouteGateChain(t *testing.T) {
	p := &buildProvider{m: chainMap()}

	plan, err := PlanRoute(p, Request{Start: "A", Goal: "C", Algorithm: Bfs})
	require.NoError(t, err)
	assert.Equal(t, []starmap.SystemID{1, 2, 3}, plan.Path)
	assert.Equal(t, 2, plan.Hops)
	assert.Equal(t, 2, plan.Gates)
	assert.Equal(t, 0, plan.Jumps)
	assert.Equal(t, "A", plan.Start)
	assert.Equal(t, "C", plan.Goal)
}

func TestPlanRouteHybridPrefersDirectJump(t *testing.T) {
	p := &buildProvider{m: triangleMap()}

	plan, err := PlanRoute(p, Request{Start: "A", Goal: "C", Algorithm: Dijkstra})
	require.NoError(t, err)
	assert.Equal(t, []starmap.SystemID{1, 3}, plan.Path)
	assert.Equal(t, 1, plan.Hops)
	assert.Equal(t, 1, plan.Jumps)
	assert.Equal(t, 0, plan.Gates)
	assert.InDelta(t, 15.0, plan.TotalDistance, 1e-6)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, graph.Spatial, plan.Steps[0].Kind)
}

func TestPlanRouteAvoidedSystemBlocksPath(t *testing.T) {
	p := &buildProvider{m: chainMap()}

	_, err := PlanRoute(p, Request{Start: "A", Goal: "C", Algorithm: Bfs, Avoid: []string{"B"}})
	var notFound *RouteNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "A", notFound.Start)
	assert.Equal(t, "C", notFound.Goal)
	assert.Contains(t, notFound.Hint, "avoid")
}

func TestPlanRouteTemperatureCapBlocksOnlyPath(t *testing.T) {
	hot := 500.0
	systems := map[starmap.SystemID]*starmap.System{
		1: {ID: 1, Name: "Cold", Position: &starmap.Position{X: 0}},
		2: {ID: 2, Name: "Hot", Position: &starmap.Position{X: 1},
			Metadata: starmap.Metadata{MinExternalTemp: &hot}},
	}
	p := &buildProvider{m: starmap.New(systems, nil)}

	maxT := 300.0
	_, err := PlanRoute(p, Request{
		Start: "Cold", Goal: "Hot", Algorithm: AStar,
		AvoidGates: true, MaxTemperature: &maxT,
	})
	var notFound *RouteNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Hint, "max_temperature")

	// Without the cap the same route exists.
	plan, err := PlanRoute(p, Request{Start: "Cold", Goal: "Hot", Algorithm: AStar, AvoidGates: true})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Hops)
}

func TestPlanRouteUnknownSystem(t *testing.T) {
	p := &buildProvider{m: triangleMap()}

	_, err := PlanRoute(p, Request{Start: "Q", Goal: "C", Algorithm: Bfs})
	var unknown *UnknownSystemError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Q", unknown.Name)
}

func TestPlanRouteUnknownSystemSuggestions(t *testing.T) {
	systems := map[starmap.SystemID]*starmap.System{
		1: {ID: 1, Name: "Brana"},
		2: {ID: 2, Name: "Nod"},
	}
	p := &buildProvider{m: starmap.New(systems, nil)}

	_, err := PlanRoute(p, Request{Start: "Brena", Goal: "Nod", Algorithm: Bfs})
	var unknown *UnknownSystemError
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, unknown.Suggestions, "Brana")
}

func TestPlanRouteRejectsAvoidedEndpoints(t *testing.T) {
	p := &buildProvider{m: chainMap()}

	_, err := PlanRoute(p, Request{Start: "A", Goal: "C", Algorithm: Bfs, Avoid: []string{"A"}})
	var invalid *InvalidConstraintError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "start")

	_, err = PlanRoute(p, Request{Start: "A", Goal: "C", Algorithm: Bfs, Avoid: []string{"C"}})
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "goal")
}

func TestPlanRouteCriticalHeatNeedsLoadout(t *testing.T) {
	p := &buildProvider{m: triangleMap()}

	_, err := PlanRoute(p, Request{Start: "A", Goal: "C", Algorithm: AStar, AvoidCriticalHeat: true})
	var invalid *InvalidConstraintError
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Reason, "loadout")
}

func TestPlanRouteHeatCapLimitsJumps(t *testing.T) {
	// This hull heats 30K per light-year, so 5 ly is the critical limit.
	// The direct 15 ly jump is too hot; the 10 ly gate legs still work.
	p := &buildProvider{m: triangleMap()}

	plan, err := PlanRoute(p, Request{
		Start: "A", Goal: "C", Algorithm: Dijkstra,
		AvoidCriticalHeat: true, Loadout: &fakeLoadout{delta: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, []starmap.SystemID{1, 2, 3}, plan.Path, "route falls back to the gate legs")
	for _, step := range plan.Steps {
		assert.Equal(t, graph.Gate, step.Kind)
	}
}

func TestPlanRouteStepKindHonorsConstraints(t *testing.T) {
	// A gate pair whose synthesized jump edge comes out fractionally cheaper
	// than the gate (the index's float32 coordinates round the jump distance
	// down), while the destination is too hot to jump into. The plan must
	// describe the hop with the gate edge the search actually took, not the
	// cheaper jump the temperature cap excluded.
	hot := 500.0
	systems := map[starmap.SystemID]*starmap.System{
		1: {ID: 1, Name: "A", Position: &starmap.Position{X: 0}},
		2: {ID: 2, Name: "B", Position: &starmap.Position{X: 10.0000001},
			Metadata: starmap.Metadata{MinExternalTemp: &hot}},
	}
	adjacency := map[starmap.SystemID][]starmap.SystemID{1: {2}, 2: {1}}
	p := &buildProvider{m: starmap.New(systems, adjacency)}

	maxT := 300.0
	plan, err := PlanRoute(p, Request{
		Start: "A", Goal: "B", Algorithm: Dijkstra, MaxTemperature: &maxT,
	})
	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, graph.Gate, plan.Steps[0].Kind)
	assert.Equal(t, 1, plan.Gates)
	assert.Equal(t, 0, plan.Jumps)
	assert.InDelta(t, 10.0000001, plan.Steps[0].Distance, 1e-9)
}

func TestPlanRouteUnknownAvoidNameWarns(t *testing.T) {
	p := &buildProvider{m: chainMap()}

	plan, err := PlanRoute(p, Request{Start: "A", Goal: "C", Algorithm: Bfs, Avoid: []string{"Xyzzy"}})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Warnings)
	assert.Contains(t, plan.Warnings[0], "Xyzzy")
}

func TestPlanRouteMonotonicity(t *testing.T) {
	// Tightening max_jump never opens new routes: a route found under a
	// tight cap is also found under a looser one.
	p := &buildProvider{m: triangleMap()}

	_, tightErr := PlanRoute(p, Request{
		Start: "A", Goal: "C", Algorithm: AStar, AvoidGates: true, MaxJump: 11,
	})
	require.NoError(t, tightErr)

	_, looseErr := PlanRoute(p, Request{
		Start: "A", Goal: "C", Algorithm: AStar, AvoidGates: true, MaxJump: 20,
	})
	assert.NoError(t, looseErr)

	// And a cap below every edge removes all routes.
	_, err := PlanRoute(p, Request{
		Start: "A", Goal: "C", Algorithm: AStar, AvoidGates: true, MaxJump: 5,
	})
	var notFound *RouteNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
