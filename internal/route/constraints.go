package route

import (
	"fmt"
	"sort"

	"star-router/internal/graph"
	"star-router/internal/ship"
	"star-router/internal/starmap"
)

// LoadoutProvider is the ship collaborator consulted by the critical-heat
// rule. HeatDelta is a pure function of mass, distance, and calibration.
type LoadoutProvider interface {
	CurrentMassKg() float64
	HullMassKg() float64
	SpecificHeat() float64
	HeatDelta(currentMassKg, hullMassKg, distanceLy, calibration float64) (float64, error)
}

// TemperatureSource answers per-system ambient temperature lookups.
// *starmap.Starmap satisfies it.
type TemperatureSource interface {
	TemperatureOf(id starmap.SystemID) (float64, bool)
}

// ConstraintSet is the full set of routing restrictions for one request.
type ConstraintSet struct {
	// MaxJump caps edge distance in light-years. Zero means no cap.
	MaxJump float64
	// Avoid lists systems the route must not pass through.
	Avoid map[starmap.SystemID]bool
	// AvoidGates excludes gate edges entirely.
	AvoidGates bool
	// MaxTemperature rejects spatial edges into systems hotter than the
	// cap; unknown temperatures pass. Nil disables the rule.
	MaxTemperature *float64
	// HeatMaxJump is the heat-derived jump cap computed by the
	// orchestrator. Applies to spatial edges only, since gates generate no
	// heat. Zero means no cap.
	HeatMaxJump float64
	// AvoidCriticalHeat rejects spatial edges whose post-jump temperature
	// would reach the critical threshold. Requires Loadout.
	AvoidCriticalHeat bool
	// Loadout is the ship collaborator for the critical-heat rule.
	Loadout LoadoutProvider
	// Calibration for the heat formula. Zero means the model default.
	Calibration float64
}

// Rule names used in rejection accounting and hints.
const (
	ruleDistanceCap  = "max_jump"
	ruleAvoidList    = "avoid"
	ruleGateExcluded = "avoid_gates"
	ruleTempCap      = "max_temperature"
	ruleCriticalHeat = "avoid_critical_heat"
)

type rule struct {
	name   string
	allows func(e graph.Edge) (ok bool, warning string)
}

// Evaluator applies the active rules to each candidate edge, in a fixed
// order, and keeps per-rule rejection counts so a failed search can name the
// most restrictive constraint. One evaluator serves one search; it is not
// safe for concurrent use.
type Evaluator struct {
	rules      []rule
	rejections map[string]int
	warnings   []string
}

// NewEvaluator compiles a constraint set against a temperature source.
func NewEvaluator(cs ConstraintSet, temps TemperatureSource) *Evaluator {
	ev := &Evaluator{rejections: make(map[string]int)}

	if cs.MaxJump > 0 {
		maxJump := cs.MaxJump
		ev.rules = append(ev.rules, rule{name: ruleDistanceCap, allows: func(e graph.Edge) (bool, string) {
			// Edges without a defined distance are not length-capped.
			return !(e.HasDistance() && e.Distance > maxJump), ""
		}})
	}
	if len(cs.Avoid) > 0 {
		avoid := cs.Avoid
		ev.rules = append(ev.rules, rule{name: ruleAvoidList, allows: func(e graph.Edge) (bool, string) {
			return !avoid[e.To], ""
		}})
	}
	if cs.AvoidGates {
		ev.rules = append(ev.rules, rule{name: ruleGateExcluded, allows: func(e graph.Edge) (bool, string) {
			return e.Kind != graph.Gate, ""
		}})
	}
	if cs.MaxTemperature != nil {
		maxTemp := *cs.MaxTemperature
		ev.rules = append(ev.rules, rule{name: ruleTempCap, allows: func(e graph.Edge) (bool, string) {
			if e.Kind != graph.Spatial {
				return true, ""
			}
			temp, known := temps.TemperatureOf(e.To)
			// Unknown temperature passes; incomplete data must not
			// over-prune the graph.
			return !known || temp <= maxTemp, ""
		}})
	}
	if cs.HeatMaxJump > 0 {
		heatMax := cs.HeatMaxJump
		ev.rules = append(ev.rules, rule{name: ruleCriticalHeat, allows: func(e graph.Edge) (bool, string) {
			if e.Kind != graph.Spatial {
				return true, ""
			}
			return !(e.HasDistance() && e.Distance > heatMax), ""
		}})
	}
	if cs.AvoidCriticalHeat && cs.Loadout != nil {
		loadout := cs.Loadout
		calibration := cs.Calibration
		if calibration <= 0 {
			calibration = ship.DefaultCalibration
		}
		ev.rules = append(ev.rules, rule{name: ruleCriticalHeat, allows: func(e graph.Edge) (bool, string) {
			if e.Kind != graph.Spatial {
				return true, ""
			}
			if !e.HasDistance() {
				return false, fmt.Sprintf("heat check rejected edge to %d: no distance", e.To)
			}
			delta, err := loadout.HeatDelta(loadout.CurrentMassKg(), loadout.HullMassKg(), e.Distance, calibration)
			if err != nil {
				// The caller explicitly asked for this check, so a
				// failed computation rejects the edge.
				return false, fmt.Sprintf("heat check failed for edge to %d: %v", e.To, err)
			}
			ambient, _ := temps.TemperatureOf(e.To)
			return ambient+delta < ship.HeatCritical, ""
		}})
	}
	return ev
}

// Allows reports whether an edge passes every active rule. Rules run in
// declaration order; the first rejecting rule is charged in the counters.
func (ev *Evaluator) Allows(e graph.Edge) bool {
	for _, r := range ev.rules {
		ok, warning := r.allows(e)
		if warning != "" {
			ev.warnings = append(ev.warnings, warning)
		}
		if !ok {
			ev.rejections[r.name]++
			return false
		}
	}
	return true
}

// Warnings returns the warnings accumulated during evaluation.
func (ev *Evaluator) Warnings() []string {
	return ev.warnings
}

// MostRestrictive returns the rule that rejected the most edges, for the
// route-not-found hint. Empty when nothing was rejected.
func (ev *Evaluator) MostRestrictive() string {
	best, count := "", 0
	names := make([]string, 0, len(ev.rejections))
	for name := range ev.rejections {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if ev.rejections[name] > count {
			best, count = name, ev.rejections[name]
		}
	}
	return best
}
