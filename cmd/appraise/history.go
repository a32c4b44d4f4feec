package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past pricing runs",
		Long:  `List recorded pricing runs with their item counts and grand totals.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			history, err := openHistory()
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := history.Close(); closeErr != nil {
					slog.Warn("Failed to close history store", "error", closeErr)
				}
			}()

			if err := history.Migrate(cmd.Context()); err != nil {
				return err
			}

			runs, err := history.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				slog.Info("No pricing runs recorded yet")
				return nil
			}

			for _, run := range runs {
				slog.Info("Run",
					"id", run.ID,
					"run_at", run.RunAt,
					"items", run.TotalItems,
					"priced", run.Priced,
					"unpriced", run.Unpriced,
					"grand_total", run.GrandTotal.String(),
					"catalog_source", run.CatalogSource)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "maximum number of runs to show")

	return cmd
}
