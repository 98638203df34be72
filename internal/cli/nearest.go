package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"star-router/internal/logger"
	"star-router/internal/route"
	"star-router/internal/spatial"
)

var nearestFlags struct {
	k              int
	radius         float64
	maxTemperature float64
}

var nearestCmd = &cobra.Command{
	Use:   "nearest <system>",
	Short: "List the systems closest to the given one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := loadBundle()
		if err != nil {
			return err
		}
		m := bundle.Starmap()

		id, ok := m.SystemIDByName(args[0])
		if !ok {
			return &route.UnknownSystemError{Name: args[0], Suggestions: m.FuzzyMatches(args[0], 3)}
		}
		pos, ok := m.PositionOf(id)
		if !ok {
			return fmt.Errorf("system %q has no coordinates", args[0])
		}

		query := spatial.Query{K: nearestFlags.k + 1, Radius: nearestFlags.radius}
		if nearestFlags.maxTemperature > 0 {
			maxT := nearestFlags.maxTemperature
			query.MaxTemperature = &maxT
		}
		results := bundle.Index().NearestFiltered(pos, query)

		logger.Section("Systems near " + m.SystemName(id))
		shown := 0
		for _, r := range results {
			if r.ID == id {
				continue
			}
			shown++
			line := fmt.Sprintf("%-30s %8.2f ly", m.SystemName(r.ID), r.Distance)
			if temp, known := m.TemperatureOf(r.ID); known {
				line += fmt.Sprintf("  %6.0fK", temp)
			}
			logger.Info("NEAREST", line)
			if shown == nearestFlags.k {
				break
			}
		}
		if shown == 0 {
			logger.Warn("NEAREST", "No systems matched the query")
		}
		return nil
	},
}

func init() {
	f := nearestCmd.Flags()
	f.IntVarP(&nearestFlags.k, "count", "k", 10, "number of systems to list")
	f.Float64VarP(&nearestFlags.radius, "radius", "r", 0, "only systems within this distance (0 = unbounded)")
	f.Float64Var(&nearestFlags.maxTemperature, "max-temperature", 0, "only systems at or below this temperature")
	rootCmd.AddCommand(nearestCmd)
}
