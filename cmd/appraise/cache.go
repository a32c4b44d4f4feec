package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stashworks/appraise/internal/storage"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the catalog snapshot cache",
		Long:  `Inspect, refresh, or remove the locally cached price catalog snapshot.`,
	}

	cmd.AddCommand(cacheStatusCmd())
	cmd.AddCommand(cacheRefreshCmd())
	cmd.AddCommand(cacheClearCmd())

	return cmd
}

func cacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show snapshot age and validity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initCatalogCache()
			if err != nil {
				return err
			}

			catalog, err := store.Load(cmd.Context())
			switch {
			case err == nil:
				slog.Info("Catalog snapshot is valid",
					"path", store.Path(),
					"entries", len(catalog.Entries),
					"fetched_at", catalog.FetchedAt,
					"age", formatAge(catalog.Age(timeNow())),
					"ttl", store.TTL())
			case errors.Is(err, storage.ErrSnapshotMissing):
				slog.Info("No catalog snapshot cached", "path", store.Path())
			case errors.Is(err, storage.ErrSnapshotExpired):
				slog.Info("Catalog snapshot has expired",
					"path", store.Path(),
					"ttl", store.TTL())
			case errors.Is(err, storage.ErrSnapshotCorrupt):
				slog.Warn("Catalog snapshot is corrupt and will be refetched on next run",
					"path", store.Path())
			default:
				return err
			}
			return nil
		},
	}
}

func cacheRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch a fresh catalog and replace the snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initCatalogCache()
			if err != nil {
				return err
			}
			fetcher, err := initMarketClient()
			if err != nil {
				return err
			}

			catalog, err := fetcher.Fetch(cmd.Context())
			if err != nil {
				return err
			}

			if err := store.Save(cmd.Context(), catalog); err != nil {
				return err
			}

			slog.Info("Catalog snapshot refreshed",
				"path", store.Path(),
				"entries", len(catalog.Entries))
			return nil
		},
	}
}

func cacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the cached snapshot",
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := initCatalogCache()
			if err != nil {
				return err
			}

			if err := store.Clear(); err != nil {
				return err
			}

			slog.Info("Catalog snapshot removed", "path", store.Path())
			return nil
		},
	}
}
