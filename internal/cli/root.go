// Package cli wires the router's commands: route planning, spatial index
// management, and nearest-neighbour lookups.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"star-router/internal/config"
	"star-router/internal/logger"
	"star-router/internal/spatial"
	"star-router/internal/starmap"
	"star-router/internal/universe"
)

// Version is stamped at build time.
var Version = ""

var cfg = config.FromEnv()

var rootCmd = &cobra.Command{
	Use:           "star-router",
	Short:         "Route planner for the frontier star map",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Banner(Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfg.DatasetPath, "dataset", cfg.DatasetPath,
		"path to the sqlite starmap dataset")
	rootCmd.PersistentFlags().StringVar(&cfg.IndexPath, "index", cfg.IndexPath,
		"path to the persisted spatial index artifact")
	rootCmd.PersistentFlags().IntVar(&cfg.MaxSpatialNeighbors, "neighbors", cfg.MaxSpatialNeighbors,
		"spatial graph out-degree bound")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("CLI", err.Error())
		os.Exit(1)
	}
}

// loadBundle loads the starmap and adopts a persisted spatial index when a
// fresh one exists; otherwise the bundle builds its own on demand.
func loadBundle() (*universe.Bundle, error) {
	m, err := starmap.Load(cfg.DatasetPath)
	if err != nil {
		return nil, err
	}
	bundle := universe.NewBundle(m)

	data, err := os.ReadFile(cfg.IndexPath)
	if err != nil {
		// Missing artifact is fine; it gets rebuilt in memory on demand.
		return bundle, nil
	}
	idx, err := spatial.Decode(data)
	if err != nil {
		logger.Warn("INDEX", fmt.Sprintf("Ignoring %s: %v", cfg.IndexPath, err))
		return bundle, nil
	}
	switch spatial.CheckFreshness(idx, m.Fingerprint, m.ReleaseTag) {
	case spatial.Fresh:
		bundle.AdoptIndex(idx)
		logger.Info("INDEX", fmt.Sprintf("Loaded fresh spatial index from %s", cfg.IndexPath))
	case spatial.Stale:
		logger.Warn("INDEX", "Persisted index is stale, rebuilding in memory")
	case spatial.LegacyFormat:
		logger.Warn("INDEX", "Persisted index predates dataset metadata, rebuilding in memory")
	}
	return bundle, nil
}
