package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/stashworks/appraise/internal/engine"
	"github.com/stashworks/appraise/internal/model"
	"github.com/stashworks/appraise/internal/pricing"
	"github.com/stashworks/appraise/internal/report"
)

func priceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price an inventory list against the market catalog",
		Long: `Price reads a tab-separated item list (name, quantity, category), resolves
each item against the cached market catalog, and writes a CSV valuation
report. The catalog is refreshed automatically when the cached snapshot is
older than the TTL.`,
		RunE: runPrice,
	}

	cmd.Flags().StringP("input", "i", "", "item list file (default: stdin)")
	cmd.Flags().StringP("output", "o", "", "report file (default: stdout)")
	cmd.Flags().Bool("exact-first", false, "prefer exact name matches before substring matches")
	cmd.Flags().Bool("no-history", false, "skip recording this run in the history database")

	return cmd
}

func runPrice(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	// Read input before touching cache or network so contract violations
	// fail fast.
	input := os.Stdin
	if path, _ := cmd.Flags().GetString("input"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				slog.Warn("Failed to close input file", "error", closeErr)
			}
		}()
		input = f
	}

	items, err := readItems(input)
	if err != nil {
		return err
	}

	store, err := initCatalogCache()
	if err != nil {
		return err
	}

	fetcher, err := initMarketClient()
	if err != nil {
		return err
	}

	mode := pricing.MatchSubstring
	if exactFirst, _ := cmd.Flags().GetBool("exact-first"); exactFirst {
		mode = pricing.MatchExactFirst
	}
	resolver := pricing.NewResolver(mode)

	opts := []engine.Option{}

	noHistory, _ := cmd.Flags().GetBool("no-history")
	if !noHistory {
		history, histErr := openHistory()
		if histErr != nil {
			slog.Warn("Run history unavailable", "error", histErr)
		} else {
			defer func() {
				if closeErr := history.Close(); closeErr != nil {
					slog.Warn("Failed to close history store", "error", closeErr)
				}
			}()
			if migrateErr := history.Migrate(ctx); migrateErr != nil {
				slog.Warn("Run history unavailable", "error", migrateErr)
			} else {
				opts = append(opts, engine.WithHistory(history))
			}
		}
	}

	bar := progressbar.NewOptions(len(items),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Pricing items..."),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(os.Stderr); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	opts = append(opts, engine.WithProgress(func(_ int) {
		_ = bar.Add(1)
	}))

	eng, err := engine.New(store, fetcher, resolver, opts...)
	if err != nil {
		return err
	}

	rows, stats, err := eng.Price(ctx, items)
	if err != nil {
		return err
	}

	output := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return fmt.Errorf("failed to create output: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil {
				slog.Warn("Failed to close output file", "error", closeErr)
			}
		}()
		output = f
	}

	if err := report.WriteCSV(output, rows); err != nil {
		return err
	}

	slog.Info("Valuation complete",
		"items", stats.TotalItems,
		"priced", stats.Priced,
		"unpriced", stats.Unpriced,
		"grand_total", model.GrandTotal(rows).String(),
		"catalog_source", stats.CatalogSource)

	return nil
}
