// Package ship models the vessel the routes are planned for: physical
// attributes, operational loadout, jump heat with Newton cooling, and fuel
// consumption.
package ship

import (
	"fmt"
	"math"
)

// FuelMassPerUnitKg is the mass of one fuel unit.
const FuelMassPerUnitKg = 1.0

// Attributes are the physical properties of a hull, loaded from the catalog.
type Attributes struct {
	Name          string
	BaseMassKg    float64
	SpecificHeat  float64
	FuelCapacity  float64
	CargoCapacity float64
}

// Validate checks that the attributes describe a usable ship.
func (a *Attributes) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("ship name must not be empty")
	}
	fields := []struct {
		value float64
		name  string
	}{
		{a.BaseMassKg, "base_mass_kg"},
		{a.SpecificHeat, "specific_heat"},
		{a.FuelCapacity, "fuel_capacity"},
		{a.CargoCapacity, "cargo_capacity"},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return fmt.Errorf("ship %q: %s must be a finite positive number, got %v",
				a.Name, f.name, f.value)
		}
	}
	return nil
}

// Loadout is the operational configuration of a ship: how much fuel and
// cargo it carries.
type Loadout struct {
	FuelLoad    float64
	CargoMassKg float64
}

// NewLoadout validates a fuel and cargo configuration against the ship's
// capacities.
func NewLoadout(attrs *Attributes, fuelLoad, cargoMassKg float64) (Loadout, error) {
	if math.IsNaN(fuelLoad) || math.IsInf(fuelLoad, 0) || fuelLoad < 0 {
		return Loadout{}, fmt.Errorf("fuel_load must be finite and non-negative, got %v", fuelLoad)
	}
	if fuelLoad > attrs.FuelCapacity {
		return Loadout{}, fmt.Errorf("fuel_load %v exceeds fuel_capacity %v", fuelLoad, attrs.FuelCapacity)
	}
	if math.IsNaN(cargoMassKg) || math.IsInf(cargoMassKg, 0) || cargoMassKg < 0 {
		return Loadout{}, fmt.Errorf("cargo_mass_kg must be finite and non-negative, got %v", cargoMassKg)
	}
	return Loadout{FuelLoad: fuelLoad, CargoMassKg: cargoMassKg}, nil
}

// FullFuel returns a loadout with a full tank and no cargo.
func FullFuel(attrs *Attributes) Loadout {
	return Loadout{FuelLoad: attrs.FuelCapacity}
}

// TotalMassKg is the operational mass: hull plus fuel plus cargo.
func (l Loadout) TotalMassKg(attrs *Attributes) float64 {
	return attrs.BaseMassKg + l.FuelLoad*FuelMassPerUnitKg + l.CargoMassKg
}
