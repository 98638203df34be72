package route

import (
	"math"

	"star-router/internal/graph"
	"star-router/internal/ship"
)

// HopProjection couples one plan step with its heat and fuel outcome.
type HopProjection struct {
	Step Step
	Heat ship.Projection
	Fuel ship.FuelProjection
}

// ProjectPlan walks a finished plan and attaches per-hop heat and fuel
// projections. Gate hops and hops without a defined distance cost nothing.
// With DynamicMass set, operational mass shrinks as fuel burns off, so later
// hops run slightly cooler and cheaper.
func ProjectPlan(plan *Plan, model *ship.HeatModel, fuelCfg ship.FuelConfig, temps TemperatureSource) ([]HopProjection, error) {
	if err := fuelCfg.Validate(); err != nil {
		return nil, err
	}
	dynamic := fuelCfg.DynamicMass || model.Config.DynamicMass

	projections := make([]HopProjection, 0, len(plan.Steps))
	remaining := model.Load.FuelLoad
	cumulative := 0.0

	for i, step := range plan.Steps {
		hop := HopProjection{Step: step}

		mass := model.CurrentMassKg()
		if dynamic {
			mass = model.Attrs.BaseMassKg + model.Load.CargoMassKg + remaining*ship.FuelMassPerUnitKg
		}

		distance := 0.0
		if step.Kind == graph.Spatial && !math.IsNaN(step.Distance) {
			distance = step.Distance
		}

		params := ship.ProjectionParams{
			TotalMassKg:  mass,
			SpecificHeat: model.SpecificHeat(),
			HullMassKg:   model.HullMassKg(),
			Calibration:  model.Calibration(),
			DistanceLy:   distance,
			IsGoal:       i == len(plan.Steps)-1,
		}
		if temp, known := temps.TemperatureOf(step.From); known {
			params.OriginTemp, params.OriginTempKnown = temp, true
		}
		if temp, known := temps.TemperatureOf(step.To); known {
			params.DestTemp, params.DestTempKnown = temp, true
		}
		if i+1 < len(plan.Steps) {
			params.NextIsGate = plan.Steps[i+1].Kind == graph.Gate
		}

		heat, err := ship.ProjectJumpHeat(params)
		if err != nil {
			return nil, err
		}
		hop.Heat = heat

		if distance > 0 {
			cost, err := ship.JumpFuelCost(mass, distance, fuelCfg)
			if err != nil {
				return nil, err
			}
			cumulative += cost
			hop.Fuel, remaining = ship.ProjectHopFuel(cost, cumulative, remaining, model.Attrs.FuelCapacity)
		} else {
			hop.Fuel = ship.FuelProjection{Cumulative: cumulative, Remaining: remaining}
		}

		projections = append(projections, hop)
	}
	return projections, nil
}
