package route

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"star-router/internal/graph"
	"star-router/internal/ship"
	"star-router/internal/starmap"
)

// projectionModel is a 10^6 kg hull whose jump heat works out to 30 K per
// light-year at the default calibration.
func projectionModel(t *testing.T, fuelLoad float64) *ship.HeatModel {
	t.Helper()
	attrs := &ship.Attributes{
		Name:          "Reflex",
		BaseMassKg:    1e6,
		SpecificHeat:  1.0,
		FuelCapacity:  500,
		CargoCapacity: 100,
	}
	load, err := ship.NewLoadout(attrs, fuelLoad, 0)
	require.NoError(t, err)
	model, err := ship.NewHeatModel(attrs, load, ship.DefaultHeatConfig())
	require.NoError(t, err)
	return model
}

func projectionPlan(steps ...Step) *Plan {
	plan := &Plan{Start: steps[0].FromName, Goal: steps[len(steps)-1].ToName, Steps: steps}
	plan.Hops = len(steps)
	return plan
}

func planStep(from, to starmap.SystemID, kind graph.EdgeKind, dist float64) Step {
	return Step{From: from, To: to, Kind: kind, Distance: dist}
}

func TestProjectPlanGateHopCostsNothing(t *testing.T) {
	model := projectionModel(t, 500)
	plan := projectionPlan(planStep(1, 2, graph.Gate, 10))

	hops, err := ProjectPlan(plan, model, ship.DefaultFuelConfig(), fakeTemps{})
	require.NoError(t, err)
	require.Len(t, hops, 1)

	assert.Zero(t, hops[0].Heat.HopHeat)
	assert.Zero(t, hops[0].Fuel.HopCost)
	assert.Equal(t, 500.0, hops[0].Fuel.Remaining)
	assert.True(t, hops[0].Heat.CanProceed)
}

func TestProjectPlanHeatWarnings(t *testing.T) {
	model := projectionModel(t, 500)
	// 2 ly at 30 K/ly lands at 30 + 60 = 90, exactly the overheat threshold.
	plan := projectionPlan(planStep(1, 2, graph.Spatial, 2))

	hops, err := ProjectPlan(plan, model, ship.DefaultFuelConfig(), fakeTemps{})
	require.NoError(t, err)
	require.Len(t, hops, 1)

	assert.InDelta(t, 60, hops[0].Heat.HopHeat, 1e-9)
	assert.Equal(t, "OVERHEATED", hops[0].Heat.Warning)
	// The goal hop has no cooldown.
	assert.Zero(t, hops[0].Heat.WaitSeconds)
}

func TestProjectPlanCooldownBetweenJumps(t *testing.T) {
	model := projectionModel(t, 500)
	plan := projectionPlan(
		planStep(1, 2, graph.Spatial, 1),
		planStep(2, 3, graph.Spatial, 1),
	)
	temps := fakeTemps{1: 20, 2: 20, 3: 20}

	hops, err := ProjectPlan(plan, model, ship.DefaultFuelConfig(), temps)
	require.NoError(t, err)
	require.Len(t, hops, 2)

	assert.Greater(t, hops[0].Heat.WaitSeconds, 0.0, "a further jump follows, so the ship must cool")
	assert.Zero(t, hops[1].Heat.WaitSeconds)
}

func TestProjectPlanNoCooldownBeforeGate(t *testing.T) {
	model := projectionModel(t, 500)
	plan := projectionPlan(
		planStep(1, 2, graph.Spatial, 1),
		planStep(2, 3, graph.Gate, math.NaN()),
	)
	temps := fakeTemps{1: 20, 2: 20, 3: 20}

	hops, err := ProjectPlan(plan, model, ship.DefaultFuelConfig(), temps)
	require.NoError(t, err)
	assert.Zero(t, hops[0].Heat.WaitSeconds, "gates need no spool-up")
}

func TestProjectPlanFuelAccounting(t *testing.T) {
	model := projectionModel(t, 500)
	plan := projectionPlan(
		planStep(1, 2, graph.Spatial, 1),
		planStep(2, 3, graph.Spatial, 1),
	)

	hops, err := ProjectPlan(plan, model, ship.DefaultFuelConfig(), fakeTemps{})
	require.NoError(t, err)

	// cost = (1000500 / 100000) × (10 / 100) × 1
	want := 1.0005
	assert.InDelta(t, want, hops[0].Fuel.HopCost, 1e-9)
	assert.InDelta(t, 500-want, hops[0].Fuel.Remaining, 1e-9)
	assert.InDelta(t, 2*want, hops[1].Fuel.Cumulative, 1e-9)
	assert.InDelta(t, 500-2*want, hops[1].Fuel.Remaining, 1e-9)
}

func TestProjectPlanRefuelWarning(t *testing.T) {
	model := projectionModel(t, 1)
	plan := projectionPlan(planStep(1, 2, graph.Spatial, 2))

	hops, err := ProjectPlan(plan, model, ship.DefaultFuelConfig(), fakeTemps{})
	require.NoError(t, err)

	assert.Equal(t, "REFUEL", hops[0].Fuel.Warning)
	assert.Equal(t, model.Attrs.FuelCapacity, hops[0].Fuel.Remaining, "tank resets to capacity")
}

func TestProjectPlanDynamicMass(t *testing.T) {
	model := projectionModel(t, 500)
	plan := projectionPlan(
		planStep(1, 2, graph.Spatial, 1),
		planStep(2, 3, graph.Spatial, 1),
	)
	cfg := ship.DefaultFuelConfig()
	cfg.DynamicMass = true

	hops, err := ProjectPlan(plan, model, cfg, fakeTemps{})
	require.NoError(t, err)

	assert.Less(t, hops[1].Fuel.HopCost, hops[0].Fuel.HopCost,
		"burned fuel lightens the ship for the second hop")
}

func TestProjectPlanRejectsBadFuelQuality(t *testing.T) {
	model := projectionModel(t, 500)
	plan := projectionPlan(planStep(1, 2, graph.Spatial, 1))

	_, err := ProjectPlan(plan, model, ship.FuelConfig{Quality: 0}, fakeTemps{})
	assert.Error(t, err)
}
