package route

import (
	"fmt"
	"math"

	"star-router/internal/graph"
	"star-router/internal/logger"
	"star-router/internal/ship"
	"star-router/internal/starmap"
)

// maxSuggestions caps the fuzzy matches attached to an unknown-name error.
const maxSuggestions = 3

// Suggester proposes close name matches for unknown-system errors. The
// starmap's Levenshtein ranking is the default implementation.
type Suggester interface {
	FuzzyMatches(name string, limit int) []string
}

// Provider supplies the starmap and its derived artifacts. Implementations
// may cache graphs per mode; the orchestrator treats every call as cheap.
type Provider interface {
	Starmap() *starmap.Starmap
	// Positions backs the A* heuristic. May return nil; the planner then
	// falls back to the starmap's coordinates.
	Positions() PositionSource
	Graph(mode graph.Mode, opts graph.BuildOptions) *graph.Graph
}

// Request is one route planning request.
type Request struct {
	Start     string
	Goal      string
	Algorithm Algorithm

	// MaxJump caps the length of any edge with a defined distance, in
	// light-years. Zero means no cap.
	MaxJump float64
	// Avoid lists system names the route must not pass through.
	Avoid []string
	// AvoidGates restricts the route to jump-drive travel.
	AvoidGates bool
	// MaxTemperature excludes spatial edges into hotter systems.
	MaxTemperature *float64

	// AvoidCriticalHeat enables the per-edge critical-heat rule and the
	// heat-derived jump cap. Requires Loadout.
	AvoidCriticalHeat bool
	Loadout           LoadoutProvider
	// Calibration for the heat formula. Zero means the model default.
	Calibration float64

	// MaxSpatialNeighbors bounds spatial graph out-degree. Zero means the
	// builder default.
	MaxSpatialNeighbors int
}

// Step is one hop of a planned route.
type Step struct {
	From     starmap.SystemID
	To       starmap.SystemID
	FromName string
	ToName   string
	Kind     graph.EdgeKind
	// Distance is NaN when the hop's edge carries no defined distance.
	Distance float64
}

// Plan is the result of a successful route search.
type Plan struct {
	Algorithm Algorithm
	Start     string
	Goal      string
	Path      []starmap.SystemID
	Steps     []Step
	Hops      int
	Gates     int
	Jumps     int
	// TotalDistance sums the defined hop distances.
	TotalDistance float64
	Warnings      []string
}

// PlanRoute resolves the request's names, validates its constraints, runs
// the selected planner over the graph variant it needs, and assembles the
// plan. Hop kind and distance are re-derived from the graph, never
// recomputed.
func PlanRoute(p Provider, req Request) (*Plan, error) {
	m := p.Starmap()

	startID, err := resolveName(m, m, req.Start)
	if err != nil {
		return nil, err
	}
	goalID, err := resolveName(m, m, req.Goal)
	if err != nil {
		return nil, err
	}

	var warnings []string
	avoid := make(map[starmap.SystemID]bool, len(req.Avoid))
	for _, name := range req.Avoid {
		id, ok := m.SystemIDByName(name)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("avoided system %q is unknown, ignoring", name))
			continue
		}
		avoid[id] = true
	}
	if avoid[startID] {
		return nil, &InvalidConstraintError{Reason: fmt.Sprintf("cannot avoid the start system %q", req.Start)}
	}
	if avoid[goalID] {
		return nil, &InvalidConstraintError{Reason: fmt.Sprintf("cannot avoid the goal system %q", req.Goal)}
	}
	if req.AvoidCriticalHeat && req.Loadout == nil {
		return nil, &InvalidConstraintError{Reason: "avoid_critical_heat requires a ship loadout"}
	}

	heatMaxJump := 0.0
	if req.AvoidCriticalHeat {
		if heatMax, ok := heatJumpCap(m, startID, req); ok {
			heatMaxJump = heatMax
			logger.Info("ROUTE", fmt.Sprintf("Heat-derived max jump: %.2f ly", heatMax))
		}
	}

	mode := graphMode(req)
	g := p.Graph(mode, graph.BuildOptions{MaxSpatialNeighbors: req.MaxSpatialNeighbors})

	ev := NewEvaluator(ConstraintSet{
		MaxJump:           req.MaxJump,
		HeatMaxJump:       heatMaxJump,
		Avoid:             avoid,
		AvoidGates:        req.AvoidGates,
		MaxTemperature:    req.MaxTemperature,
		AvoidCriticalHeat: req.AvoidCriticalHeat,
		Loadout:           req.Loadout,
		Calibration:       req.Calibration,
	}, m)

	positions := p.Positions()
	if positions == nil {
		positions = m
	}

	planner := SelectPlanner(req.Algorithm)
	path, found := planner.FindPath(g, positions, startID, goalID, ev)
	warnings = append(warnings, ev.Warnings()...)
	if !found {
		hint := ""
		if name := ev.MostRestrictive(); name != "" {
			hint = "most restrictive constraint: " + name
		}
		return nil, &RouteNotFoundError{Start: req.Start, Goal: req.Goal, Hint: hint}
	}

	plan := assemblePlan(m, g, path, req, ev, warnings)
	logger.Success("ROUTE", fmt.Sprintf("%s -> %s: %d hops (%d gates, %d jumps)",
		plan.Start, plan.Goal, plan.Hops, plan.Gates, plan.Jumps))
	return plan, nil
}

func resolveName(m *starmap.Starmap, sugg Suggester, name string) (starmap.SystemID, error) {
	id, ok := m.SystemIDByName(name)
	if !ok {
		return 0, &UnknownSystemError{Name: name, Suggestions: sugg.FuzzyMatches(name, maxSuggestions)}
	}
	return id, nil
}

// heatJumpCap derives the longest jump that stays below the critical heat
// threshold when departing the start system's ambient temperature.
func heatJumpCap(m *starmap.Starmap, startID starmap.SystemID, req Request) (float64, bool) {
	ambient, _ := m.TemperatureOf(startID)
	calibration := req.Calibration
	if calibration <= 0 {
		calibration = ship.DefaultCalibration
	}
	limit := ship.MaxJumpForHeat(req.Loadout.HullMassKg(), req.Loadout.SpecificHeat(), calibration, ambient)
	return limit, limit > 0
}

// graphMode picks the graph variant for the request: spatial-only when gates
// are excluded, gate-only for hop counting, hybrid for weighted search.
func graphMode(req Request) graph.Mode {
	switch {
	case req.AvoidGates:
		return graph.SpatialOnly
	case req.Algorithm == Bfs:
		return graph.GateOnly
	default:
		return graph.Hybrid
	}
}

func assemblePlan(m *starmap.Starmap, g *graph.Graph, path []starmap.SystemID, req Request, ev *Evaluator, warnings []string) *Plan {
	plan := &Plan{
		Algorithm: req.Algorithm,
		Start:     m.SystemName(path[0]),
		Goal:      m.SystemName(path[len(path)-1]),
		Path:      path,
		Warnings:  warnings,
	}
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		step := Step{
			From:     from,
			To:       to,
			FromName: m.SystemName(from),
			ToName:   m.SystemName(to),
			Distance: math.NaN(),
		}
		// Only edges the pipeline accepts may describe the hop: between the
		// same pair the cheapest edge can be one a constraint excluded, and
		// the search never traversed it.
		if e, ok := g.EdgeBetweenFunc(from, to, ev.Allows); ok {
			step.Kind = e.Kind
			step.Distance = e.Distance
		}
		if step.Kind == graph.Gate {
			plan.Gates++
		} else {
			plan.Jumps++
		}
		if !math.IsNaN(step.Distance) {
			plan.TotalDistance += step.Distance
		}
		plan.Steps = append(plan.Steps, step)
	}
	plan.Hops = len(plan.Steps)
	return plan
}
