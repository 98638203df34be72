package ship

import (
	"fmt"
	"math"
)

// Heat thresholds in absolute heat units. Warnings compare the projected
// instantaneous temperature against Overheated and Critical.
const (
	HeatNominal    = 30.0
	HeatOverheated = 90.0
	HeatCritical   = 150.0
)

const (
	// BaseCoolingPower scales the Newton cooling constant. Calibrated to
	// give wait times in the minutes range for 10^7 kg hulls.
	BaseCoolingPower = 1e6
	// coolingEpsilon keeps the cooling-time logarithm inside its domain
	// when the target temperature sits at or below ambient.
	coolingEpsilon = 0.01
	// DefaultCalibration is the fixed internal calibration constant of the
	// jump heat formula.
	DefaultCalibration = 1e-7
)

// HeatConfig configures the jump heat model.
type HeatConfig struct {
	Calibration float64
	// DynamicMass recomputes operational mass per hop as fuel burns off.
	DynamicMass bool
}

// DefaultHeatConfig returns the stable internal calibration.
func DefaultHeatConfig() HeatConfig {
	return HeatConfig{Calibration: DefaultCalibration}
}

// JumpHeatEnergy is the energy generated by a single jump:
//
//	energy = 3 × totalMass × distance / (calibration × hullMass)
//
// Zero distance (a gate transition) generates no heat.
func JumpHeatEnergy(totalMassKg, distanceLy, hullMassKg, calibration float64) (float64, error) {
	if math.IsNaN(distanceLy) || math.IsInf(distanceLy, 0) || distanceLy < 0 {
		return 0, fmt.Errorf("distance must be finite and non-negative, got %v", distanceLy)
	}
	if math.IsNaN(totalMassKg) || math.IsInf(totalMassKg, 0) || totalMassKg <= 0 {
		return 0, fmt.Errorf("total mass must be finite and positive, got %v", totalMassKg)
	}
	if math.IsNaN(hullMassKg) || math.IsInf(hullMassKg, 0) || hullMassKg <= 0 {
		return 0, fmt.Errorf("hull mass must be finite and positive, got %v", hullMassKg)
	}
	if math.IsNaN(calibration) || math.IsInf(calibration, 0) || calibration <= 0 {
		return 0, fmt.Errorf("calibration must be finite and positive, got %v", calibration)
	}
	if distanceLy == 0 {
		return 0, nil
	}
	return (3 * totalMassKg * distanceLy) / (calibration * hullMassKg), nil
}

// ZoneFactor maps an ambient temperature to a cooling effectiveness factor.
// Colder environments cool better. An unknown temperature gets a conservative
// default.
func ZoneFactor(minExternalTemp float64, known bool) float64 {
	if !known || math.IsNaN(minExternalTemp) || math.IsInf(minExternalTemp, 0) {
		return 0.1
	}
	switch {
	case minExternalTemp <= 30:
		return 1.0
	case minExternalTemp <= 100:
		return 0.7
	case minExternalTemp <= 300:
		return 0.4
	case minExternalTemp <= 1000:
		return 0.2
	default:
		return 0.05
	}
}

// CoolingConstant is Newton's k in 1/s:
//
//	k = BaseCoolingPower × zoneFactor / (mass × specificHeat)
//
// Invalid mass or specific heat yields 0, meaning no cooling available.
func CoolingConstant(totalMassKg, specificHeat, minExternalTemp float64, tempKnown bool) float64 {
	if math.IsNaN(totalMassKg) || math.IsInf(totalMassKg, 0) || totalMassKg <= 0 {
		return 0
	}
	if math.IsNaN(specificHeat) || math.IsInf(specificHeat, 0) || specificHeat <= 0 {
		return 0
	}
	return (BaseCoolingPower * ZoneFactor(minExternalTemp, tempKnown)) / (totalMassKg * specificHeat)
}

// CoolingTime is the time in seconds to cool from start to target in an
// environment at envTemp:
//
//	t = -(1/k) × ln((target - env) / (start - env))
//
// Ambient is the physical floor; targets at or below it are clamped just
// above. Already-cool states and invalid k return 0.
func CoolingTime(startTemp, targetTemp, envTemp, k float64) float64 {
	if math.IsNaN(startTemp) || math.IsNaN(targetTemp) || math.IsNaN(envTemp) || math.IsNaN(k) ||
		math.IsInf(startTemp, 0) || math.IsInf(targetTemp, 0) || math.IsInf(envTemp, 0) || math.IsInf(k, 0) {
		return 0
	}
	if startTemp <= targetTemp || k <= 0 {
		return 0
	}
	target := math.Max(targetTemp, envTemp+coolingEpsilon)
	if startTemp <= target {
		return 0
	}
	ratio := (target - envTemp) / (startTemp - envTemp)
	return -(1 / k) * math.Log(ratio)
}

// Projection is the heat outcome of a single hop.
type Projection struct {
	// HopHeat is the temperature delta in Kelvin caused by the jump.
	HopHeat float64
	// Warning is "OVERHEATED" or "CRITICAL" when the instantaneous
	// temperature crosses a threshold, otherwise "".
	Warning string
	// WaitSeconds is the cooldown needed before the next jump, 0 if none.
	WaitSeconds float64
	// ResidualHeat is the temperature at arrival after any cooldown.
	ResidualHeat float64
	// CanProceed reports whether the cooling model permits continuing.
	CanProceed bool
}

// ProjectionParams bundles the inputs of ProjectJumpHeat.
type ProjectionParams struct {
	TotalMassKg  float64
	SpecificHeat float64
	HullMassKg   float64
	Calibration  float64
	DistanceLy   float64

	// Ambient temperatures at the origin and destination, when known.
	OriginTemp      float64
	OriginTempKnown bool
	DestTemp        float64
	DestTempKnown   bool

	// IsGoal suppresses the cooldown (no further jump follows); NextIsGate
	// does the same because gates need no spool-up.
	IsGoal     bool
	NextIsGate bool
}

// ProjectJumpHeat computes the per-hop temperature delta, threshold warnings,
// and the cooldown required before the next jump.
func ProjectJumpHeat(p ProjectionParams) (Projection, error) {
	if math.IsNaN(p.TotalMassKg) || math.IsInf(p.TotalMassKg, 0) || p.TotalMassKg <= 0 {
		return Projection{}, fmt.Errorf("total mass must be finite and positive, got %v", p.TotalMassKg)
	}
	if math.IsNaN(p.SpecificHeat) || math.IsInf(p.SpecificHeat, 0) || p.SpecificHeat <= 0 {
		return Projection{}, fmt.Errorf("specific heat must be finite and positive, got %v", p.SpecificHeat)
	}
	if math.IsNaN(p.DistanceLy) || math.IsInf(p.DistanceLy, 0) || p.DistanceLy < 0 {
		return Projection{}, fmt.Errorf("distance must be finite and non-negative, got %v", p.DistanceLy)
	}

	if p.DistanceLy == 0 {
		return Projection{ResidualHeat: HeatNominal, CanProceed: true}, nil
	}

	energy, err := JumpHeatEnergy(p.TotalMassKg, p.DistanceLy, p.HullMassKg, p.Calibration)
	if err != nil {
		return Projection{}, err
	}
	hopHeat := energy / (p.TotalMassKg * p.SpecificHeat)

	startTemp := HeatNominal
	if p.OriginTempKnown && p.OriginTemp > startTemp {
		startTemp = p.OriginTemp
	}
	candidate := startTemp + hopHeat

	proj := Projection{HopHeat: hopHeat, ResidualHeat: candidate, CanProceed: true}
	switch {
	case candidate >= HeatCritical:
		proj.Warning = "CRITICAL"
	case candidate >= HeatOverheated:
		proj.Warning = "OVERHEATED"
	}

	if candidate > HeatNominal && !p.IsGoal && !p.NextIsGate {
		k := CoolingConstant(p.TotalMassKg, p.SpecificHeat, p.DestTemp, p.DestTempKnown)
		if k > 0 {
			envTemp := 0.0
			if p.DestTempKnown {
				envTemp = p.DestTemp
			}
			if wait := CoolingTime(candidate, HeatNominal, envTemp, k); wait > 0 {
				proj.WaitSeconds = wait
				proj.ResidualHeat = math.Max(HeatNominal, envTemp)
			}
		} else {
			proj.CanProceed = false
		}
	}
	return proj, nil
}

// MaxJumpForHeat is the longest jump that keeps instantaneous temperature
// below the critical threshold when starting from the given ambient:
//
//	d_max = (critical - ambient) × calibration × hullMass × specificHeat / 3
//
// Returns 0 when the ambient already exceeds the threshold.
func MaxJumpForHeat(hullMassKg, specificHeat, calibration, ambientTemp float64) float64 {
	allowedDelta := HeatCritical - ambientTemp
	if allowedDelta <= 0 || calibration <= 0 {
		return 0
	}
	return allowedDelta * (calibration * hullMassKg * specificHeat) / 3
}

// HeatModel couples a ship and loadout into the provider the route planner
// consults for heat-aware constraints.
type HeatModel struct {
	Attrs  *Attributes
	Load   Loadout
	Config HeatConfig
}

// NewHeatModel validates the ship and returns its heat model.
func NewHeatModel(attrs *Attributes, load Loadout, cfg HeatConfig) (*HeatModel, error) {
	if err := attrs.Validate(); err != nil {
		return nil, err
	}
	if cfg.Calibration <= 0 {
		cfg.Calibration = DefaultCalibration
	}
	return &HeatModel{Attrs: attrs, Load: load, Config: cfg}, nil
}

// CurrentMassKg is the operational mass of the loadout.
func (h *HeatModel) CurrentMassKg() float64 {
	return h.Load.TotalMassKg(h.Attrs)
}

// HullMassKg is the base hull mass.
func (h *HeatModel) HullMassKg() float64 {
	return h.Attrs.BaseMassKg
}

// SpecificHeat is the hull's specific heat.
func (h *HeatModel) SpecificHeat() float64 {
	return h.Attrs.SpecificHeat
}

// HeatDelta is the temperature increase of a jump of the given distance.
func (h *HeatModel) HeatDelta(currentMassKg, hullMassKg, distanceLy, calibration float64) (float64, error) {
	energy, err := JumpHeatEnergy(currentMassKg, distanceLy, hullMassKg, calibration)
	if err != nil {
		return 0, err
	}
	return energy / (currentMassKg * h.Attrs.SpecificHeat), nil
}

// Calibration is the configured calibration constant.
func (h *HeatModel) Calibration() float64 {
	return h.Config.Calibration
}
