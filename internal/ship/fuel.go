package ship

import (
	"fmt"
	"math"
)

// FuelConfig configures fuel consumption.
type FuelConfig struct {
	// Quality is the fuel quality percentage in [1, 100]. Higher quality
	// burns less per light-year.
	Quality float64
	// DynamicMass recomputes operational mass per hop as fuel burns off.
	DynamicMass bool
}

// DefaultFuelConfig returns the baseline 10% quality.
func DefaultFuelConfig() FuelConfig {
	return FuelConfig{Quality: 10}
}

// Validate checks the fuel configuration.
func (c FuelConfig) Validate() error {
	if math.IsNaN(c.Quality) || math.IsInf(c.Quality, 0) {
		return fmt.Errorf("fuel quality must be finite, got %v", c.Quality)
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("fuel quality must be between 1 and 100, got %v", c.Quality)
	}
	return nil
}

// massDistanceConversion relates mass to fuel units per light-year.
const massDistanceConversion = 100_000.0

// JumpFuelCost is the fuel required for a single jump:
//
//	cost = (totalMass / 100000) × (quality / 100) × distance
func JumpFuelCost(totalMassKg, distanceLy float64, cfg FuelConfig) (float64, error) {
	if math.IsNaN(distanceLy) || math.IsInf(distanceLy, 0) || distanceLy <= 0 {
		return 0, fmt.Errorf("distance must be finite and positive, got %v", distanceLy)
	}
	if math.IsNaN(totalMassKg) || math.IsInf(totalMassKg, 0) || totalMassKg <= 0 {
		return 0, fmt.Errorf("total mass must be finite and positive, got %v", totalMassKg)
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return (totalMassKg / massDistanceConversion) * (cfg.Quality / 100) * distanceLy, nil
}

// MaxJumpForFuel is the longest jump the given fuel load affords:
//
//	d_max = fuel × 100000 / (mass × quality/100)
func MaxJumpForFuel(fuelUnits, totalMassKg, quality float64) (float64, error) {
	if math.IsNaN(fuelUnits) || math.IsInf(fuelUnits, 0) || fuelUnits < 0 {
		return 0, fmt.Errorf("fuel units must be finite and non-negative, got %v", fuelUnits)
	}
	if math.IsNaN(totalMassKg) || math.IsInf(totalMassKg, 0) || totalMassKg <= 0 {
		return 0, fmt.Errorf("total mass must be finite and positive, got %v", totalMassKg)
	}
	cfg := FuelConfig{Quality: quality}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return fuelUnits * massDistanceConversion / (totalMassKg * quality / 100), nil
}

// FuelProjection is the fuel outcome of a single hop.
type FuelProjection struct {
	HopCost    float64
	Cumulative float64
	Remaining  float64
	// Warning is "REFUEL" when the hop exceeded the remaining fuel and the
	// tank was notionally reset to capacity.
	Warning string
}

// ProjectHopFuel tracks fuel across one hop. When the hop costs more than
// what remains, a REFUEL warning is raised and the tank resets to capacity.
// Returns the projection and the fuel remaining afterwards.
func ProjectHopFuel(hopCost, cumulative, remaining, capacity float64) (FuelProjection, float64) {
	if hopCost > remaining {
		return FuelProjection{
			HopCost:    hopCost,
			Cumulative: cumulative,
			Remaining:  capacity,
			Warning:    "REFUEL",
		}, capacity
	}
	newRemaining := math.Max(remaining-hopCost, 0)
	return FuelProjection{
		HopCost:    hopCost,
		Cumulative: cumulative,
		Remaining:  newRemaining,
	}, newRemaining
}
