package cli

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"star-router/internal/logger"
	"star-router/internal/route"
	"star-router/internal/ship"
)

var routeFlags struct {
	algorithm         string
	maxJump           float64
	avoid             []string
	avoidGates        bool
	maxTemperature    float64
	avoidCriticalHeat bool
	shipName          string
	fuelLoad          float64
	cargoMass         float64
	fuelQuality       float64
	dynamicMass       bool
	jsonOutput        bool
}

var routeCmd = &cobra.Command{
	Use:   "route <start> <goal>",
	Short: "Plan a route between two systems",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoute,
}

func init() {
	f := routeCmd.Flags()
	f.StringVarP(&routeFlags.algorithm, "algorithm", "a", cfg.Algorithm,
		"search algorithm: bfs, dijkstra, or a-star")
	f.Float64Var(&routeFlags.maxJump, "max-jump", 0, "maximum jump distance in light-years (0 = unlimited)")
	f.StringSliceVar(&routeFlags.avoid, "avoid", nil, "system names the route must not pass through")
	f.BoolVar(&routeFlags.avoidGates, "avoid-gates", false, "restrict the route to jump-drive travel")
	f.Float64Var(&routeFlags.maxTemperature, "max-temperature", 0,
		"exclude jumps into systems hotter than this (Kelvin, 0 = no cap)")
	f.BoolVar(&routeFlags.avoidCriticalHeat, "avoid-critical-heat", false,
		"reject jumps that would push engine heat to the critical threshold (requires --ship)")
	f.StringVar(&routeFlags.shipName, "ship", "", "ship name from the catalog")
	f.Float64Var(&routeFlags.fuelLoad, "fuel", -1, "fuel load in units (-1 = full tank)")
	f.Float64Var(&routeFlags.cargoMass, "cargo", 0, "cargo mass in kg")
	f.Float64Var(&routeFlags.fuelQuality, "fuel-quality", cfg.FuelQuality, "fuel quality percentage (1-100)")
	f.BoolVar(&routeFlags.dynamicMass, "dynamic-mass", false,
		"recompute operational mass per hop as fuel burns off")
	f.BoolVar(&routeFlags.jsonOutput, "json", false, "emit the plan as JSON on stdout")
	rootCmd.AddCommand(routeCmd)
}

func runRoute(cmd *cobra.Command, args []string) error {
	bundle, err := loadBundle()
	if err != nil {
		return err
	}
	algorithm, err := route.ParseAlgorithm(routeFlags.algorithm)
	if err != nil {
		return err
	}

	req := route.Request{
		Start:               args[0],
		Goal:                args[1],
		Algorithm:           algorithm,
		MaxJump:             routeFlags.maxJump,
		Avoid:               routeFlags.avoid,
		AvoidGates:          routeFlags.avoidGates,
		AvoidCriticalHeat:   routeFlags.avoidCriticalHeat,
		Calibration:         cfg.Calibration,
		MaxSpatialNeighbors: cfg.MaxSpatialNeighbors,
	}
	if routeFlags.maxTemperature > 0 {
		maxT := routeFlags.maxTemperature
		req.MaxTemperature = &maxT
	}

	var model *ship.HeatModel
	if routeFlags.shipName != "" {
		model, err = loadShipModel()
		if err != nil {
			return err
		}
		req.Loadout = model
	}

	plan, err := route.PlanRoute(bundle, req)
	if err != nil {
		return err
	}

	var hops []route.HopProjection
	if model != nil {
		fuelCfg := ship.FuelConfig{Quality: routeFlags.fuelQuality, DynamicMass: routeFlags.dynamicMass}
		hops, err = route.ProjectPlan(plan, model, fuelCfg, bundle.Starmap())
		if err != nil {
			return err
		}
	}

	if routeFlags.jsonOutput {
		return printPlanJSON(plan, hops)
	}
	printPlan(plan, hops)
	return nil
}

func loadShipModel() (*ship.HeatModel, error) {
	if cfg.ShipCatalogPath == "" {
		return nil, fmt.Errorf("--ship requires a catalog (set STAR_ROUTER_SHIPS)")
	}
	catalog, err := ship.LoadCatalog(cfg.ShipCatalogPath)
	if err != nil {
		return nil, err
	}
	attrs, ok := catalog.Get(routeFlags.shipName)
	if !ok {
		return nil, fmt.Errorf("ship %q not in catalog (have: %v)", routeFlags.shipName, catalog.Names())
	}

	var load ship.Loadout
	if routeFlags.fuelLoad < 0 {
		load = ship.FullFuel(attrs)
		load.CargoMassKg = routeFlags.cargoMass
	} else {
		load, err = ship.NewLoadout(attrs, routeFlags.fuelLoad, routeFlags.cargoMass)
		if err != nil {
			return nil, err
		}
	}
	cfgHeat := ship.HeatConfig{Calibration: cfg.Calibration, DynamicMass: routeFlags.dynamicMass}
	return ship.NewHeatModel(attrs, load, cfgHeat)
}

func printPlan(plan *route.Plan, hops []route.HopProjection) {
	logger.Section(fmt.Sprintf("Route %s -> %s (%s)", plan.Start, plan.Goal, plan.Algorithm))

	for i, step := range plan.Steps {
		line := fmt.Sprintf("%2d. %s -> %s [%s]", i+1, step.FromName, step.ToName, step.Kind)
		if !math.IsNaN(step.Distance) {
			line += fmt.Sprintf(" %.2f ly", step.Distance)
		}
		if hops != nil {
			hop := hops[i]
			if hop.Fuel.HopCost > 0 {
				line += fmt.Sprintf("  fuel %.1f (left %.1f)", hop.Fuel.HopCost, hop.Fuel.Remaining)
			}
			if hop.Fuel.Warning != "" {
				line += "  " + hop.Fuel.Warning
			}
			if hop.Heat.HopHeat > 0 {
				line += fmt.Sprintf("  heat +%.1fK", hop.Heat.HopHeat)
			}
			if hop.Heat.Warning != "" {
				line += "  " + hop.Heat.Warning
			}
			if hop.Heat.WaitSeconds > 0 {
				line += fmt.Sprintf("  cool %.0fs", hop.Heat.WaitSeconds)
			}
		}
		logger.Info("ROUTE", line)
	}

	logger.Stats("hops", plan.Hops)
	logger.Stats("gates", plan.Gates)
	logger.Stats("jumps", plan.Jumps)
	if plan.TotalDistance > 0 {
		logger.Stats("distance", fmt.Sprintf("%.2f ly", plan.TotalDistance))
	}
	for _, w := range plan.Warnings {
		logger.Warn("ROUTE", w)
	}
}

type planJSON struct {
	Start           string     `json:"start"`
	Goal            string     `json:"goal"`
	Algorithm       string     `json:"algorithm"`
	Hops            int        `json:"hops"`
	Gates           int        `json:"gates"`
	Jumps           int        `json:"jumps"`
	TotalDistanceLy float64    `json:"total_distance_ly"`
	Steps           []stepJSON `json:"steps"`
	Warnings        []string   `json:"warnings,omitempty"`
}

type stepJSON struct {
	From          string   `json:"from"`
	To            string   `json:"to"`
	Kind          string   `json:"kind"`
	DistanceLy    *float64 `json:"distance_ly,omitempty"`
	FuelCost      *float64 `json:"fuel_cost,omitempty"`
	FuelRemaining *float64 `json:"fuel_remaining,omitempty"`
	FuelWarning   string   `json:"fuel_warning,omitempty"`
	HeatDeltaK    *float64 `json:"heat_delta_k,omitempty"`
	HeatWarning   string   `json:"heat_warning,omitempty"`
	CoolSeconds   *float64 `json:"cool_seconds,omitempty"`
}

func printPlanJSON(plan *route.Plan, hops []route.HopProjection) error {
	out := planJSON{
		Start:           plan.Start,
		Goal:            plan.Goal,
		Algorithm:       plan.Algorithm.String(),
		Hops:            plan.Hops,
		Gates:           plan.Gates,
		Jumps:           plan.Jumps,
		TotalDistanceLy: plan.TotalDistance,
		Warnings:        plan.Warnings,
	}
	for i, step := range plan.Steps {
		s := stepJSON{From: step.FromName, To: step.ToName, Kind: step.Kind.String()}
		if !math.IsNaN(step.Distance) {
			d := step.Distance
			s.DistanceLy = &d
		}
		if hops != nil {
			hop := hops[i]
			if hop.Fuel.HopCost > 0 {
				cost, remaining := hop.Fuel.HopCost, hop.Fuel.Remaining
				s.FuelCost, s.FuelRemaining = &cost, &remaining
			}
			s.FuelWarning = hop.Fuel.Warning
			if hop.Heat.HopHeat > 0 {
				delta := hop.Heat.HopHeat
				s.HeatDeltaK = &delta
			}
			s.HeatWarning = hop.Heat.Warning
			if hop.Heat.WaitSeconds > 0 {
				wait := hop.Heat.WaitSeconds
				s.CoolSeconds = &wait
			}
		}
		out.Steps = append(out.Steps, s)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
