// Package config holds the runtime settings of the router CLI.
package config

import (
	"os"
	"strconv"
)

// Config holds application settings (in-memory representation).
type Config struct {
	// DatasetPath is the sqlite dataset the starmap is loaded from.
	DatasetPath string `json:"dataset_path"`
	// IndexPath is where the spatial index artifact is persisted.
	IndexPath string `json:"index_path"`
	// ShipCatalogPath is the CSV ship catalog, empty if none.
	ShipCatalogPath string `json:"ship_catalog_path"`

	Algorithm           string  `json:"algorithm"`
	MaxSpatialNeighbors int     `json:"max_spatial_neighbors"`
	FuelQuality         float64 `json:"fuel_quality"`
	Calibration         float64 `json:"calibration"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DatasetPath:         "static_data.db",
		IndexPath:           "static_data.db.spatial.bin",
		Algorithm:           "a-star",
		MaxSpatialNeighbors: 12,
		FuelQuality:         10,
		Calibration:         1e-7,
	}
}

// FromEnv layers environment overrides over the defaults. Unset or malformed
// variables keep the default value.
func FromEnv() *Config {
	cfg := Default()
	if v := os.Getenv("STAR_ROUTER_DATASET"); v != "" {
		cfg.DatasetPath = v
		cfg.IndexPath = v + ".spatial.bin"
	}
	if v := os.Getenv("STAR_ROUTER_INDEX"); v != "" {
		cfg.IndexPath = v
	}
	if v := os.Getenv("STAR_ROUTER_SHIPS"); v != "" {
		cfg.ShipCatalogPath = v
	}
	if v := os.Getenv("STAR_ROUTER_ALGORITHM"); v != "" {
		cfg.Algorithm = v
	}
	if v := os.Getenv("STAR_ROUTER_NEIGHBORS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSpatialNeighbors = n
		}
	}
	if v := os.Getenv("STAR_ROUTER_FUEL_QUALITY"); v != "" {
		if q, err := strconv.ParseFloat(v, 64); err == nil && q >= 1 && q <= 100 {
			cfg.FuelQuality = q
		}
	}
	if v := os.Getenv("STAR_ROUTER_CALIBRATION"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil && c > 0 {
			cfg.Calibration = c
		}
	}
	return cfg
}
