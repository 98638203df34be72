package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"star-router/internal/logger"
	"star-router/internal/spatial"
	"star-router/internal/starmap"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the persisted spatial index",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the spatial index from the dataset and persist it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := loadBundle()
		if err != nil {
			return err
		}
		idx := bundle.Index()
		data, err := spatial.Encode(idx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(cfg.IndexPath, data, 0o644); err != nil {
			return fmt.Errorf("write index artifact: %w", err)
		}
		logger.Success("INDEX", fmt.Sprintf("Wrote %d points (%d bytes) to %s",
			idx.Len(), len(data), cfg.IndexPath))
		return nil
	},
}

var indexVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the persisted index against the current dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := readIndexArtifact()
		if err != nil {
			return err
		}
		fingerprint, err := starmap.FileFingerprint(cfg.DatasetPath)
		if err != nil {
			return err
		}
		tag := starmap.ReadReleaseTag(cfg.DatasetPath)

		switch spatial.CheckFreshness(idx, fingerprint, tag) {
		case spatial.Fresh:
			logger.Success("INDEX", "Index matches the current dataset")
		case spatial.Stale:
			logger.Warn("INDEX", "Index is stale: rebuild with 'star-router index build'")
		case spatial.LegacyFormat:
			logger.Warn("INDEX", "Index predates dataset metadata, freshness unknown")
		}
		return nil
	},
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the persisted index's header and metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := readIndexArtifact()
		if err != nil {
			return err
		}
		logger.Section("Spatial index " + cfg.IndexPath)
		logger.Stats("points", idx.Len())
		if meta := idx.Metadata(); meta != nil {
			logger.Stats("dataset checksum", fmt.Sprintf("%x", meta.DatasetChecksum[:8]))
			if meta.ReleaseTag != "" {
				logger.Stats("release", meta.ReleaseTag)
			}
			logger.Stats("built", meta.BuiltAt.Format("2006-01-02 15:04:05 MST"))
		} else {
			logger.Stats("metadata", "none (legacy format)")
		}
		return nil
	},
}

func readIndexArtifact() (*spatial.Index, error) {
	data, err := os.ReadFile(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("read index artifact: %w", err)
	}
	return spatial.Decode(data)
}

func init() {
	indexCmd.AddCommand(indexBuildCmd, indexVerifyCmd, indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}
