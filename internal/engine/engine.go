// Package engine implements the pricing pipeline that values an inventory
// against the catalog cache.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/stashworks/appraise/internal/common"
	"github.com/stashworks/appraise/internal/model"
	"github.com/stashworks/appraise/internal/service"
)

// Engine orchestrates one pricing run: it obtains a catalog (cache first,
// remote on miss), resolves a price per requested item, and aggregates the
// results. It never fails a run for pricing-data reasons; missing catalogs
// degrade to all-unknown pricing.
type Engine struct {
	store    service.CatalogStore
	fetcher  service.CatalogFetcher
	resolver service.PriceResolver
	history  service.RunHistory
	progress func(done int)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithHistory records each completed run into the given history store,
// best-effort.
func WithHistory(history service.RunHistory) Option {
	return func(e *Engine) {
		e.history = history
	}
}

// WithProgress installs a callback invoked after each item is priced.
func WithProgress(progress func(done int)) Option {
	return func(e *Engine) {
		e.progress = progress
	}
}

// New creates a pricing engine with the given dependencies.
func New(store service.CatalogStore, fetcher service.CatalogFetcher, resolver service.PriceResolver, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("catalog store is required")
	}
	if fetcher == nil {
		return nil, errors.New("catalog fetcher is required")
	}
	if resolver == nil {
		return nil, errors.New("price resolver is required")
	}

	e := &Engine{
		store:    store,
		fetcher:  fetcher,
		resolver: resolver,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Price values every requested item and returns one row per input, ordered
// case-insensitively by item name. The only returned errors are caller
// contract violations, raised before any cache or network activity.
func (e *Engine) Price(ctx context.Context, items []model.InventoryItem) ([]model.PricedItem, *service.PricingStats, error) {
	started := time.Now()

	if err := validateItems(items); err != nil {
		return nil, nil, err
	}

	catalog, source := e.obtainCatalog(ctx)

	// Resolver-natural ordering; callers needing input order must re-sort.
	ordered := make([]model.InventoryItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return strings.ToLower(ordered[i].Name) < strings.ToLower(ordered[j].Name)
	})

	stats := &service.PricingStats{
		CatalogSource: source,
		TotalItems:    len(ordered),
	}

	rows := make([]model.PricedItem, 0, len(ordered))
	for i, item := range ordered {
		unitPrice := e.resolver.Resolve(catalog, item.Name)
		rows = append(rows, model.NewPricedItem(item, unitPrice))

		if unitPrice != nil {
			stats.Priced++
		} else {
			stats.Unpriced++
		}
		if e.progress != nil {
			e.progress(i + 1)
		}
	}

	stats.Duration = time.Since(started)

	slog.Info("Pricing run complete",
		"total", stats.TotalItems,
		"priced", stats.Priced,
		"unpriced", stats.Unpriced,
		"catalog_source", stats.CatalogSource,
		"duration", stats.Duration)

	e.recordRun(ctx, rows, stats)

	return rows, stats, nil
}

// obtainCatalog loads the cached snapshot, refreshing it from the remote
// service when the cache misses. Both the fetch and the write-back are
// best-effort: a failed fetch degrades the run to an absent catalog.
func (e *Engine) obtainCatalog(ctx context.Context) (*model.Catalog, service.CatalogSource) {
	catalog, err := e.store.Load(ctx)
	if err == nil {
		slog.Debug("Using cached catalog",
			"entries", len(catalog.Entries),
			"fetched_at", catalog.FetchedAt)
		return catalog, service.SourceCache
	}

	slog.Info("Catalog cache miss, fetching", "reason", err)

	catalog, err = e.fetcher.Fetch(ctx)
	if err != nil {
		common.LogError(err, "Catalog fetch failed, pricing without a catalog", common.Fields{})
		return nil, service.SourceNone
	}

	if saveErr := e.store.Save(ctx, catalog); saveErr != nil {
		// The fresh catalog still serves this run.
		slog.Warn("Failed to persist catalog snapshot", "error", saveErr)
	}

	return catalog, service.SourceRemote
}

func (e *Engine) recordRun(ctx context.Context, rows []model.PricedItem, stats *service.PricingStats) {
	if e.history == nil {
		return
	}

	run := &service.RunRecord{
		RunAt:         time.Now().UTC(),
		CatalogSource: stats.CatalogSource,
		TotalItems:    stats.TotalItems,
		Priced:        stats.Priced,
		Unpriced:      stats.Unpriced,
		GrandTotal:    model.GrandTotal(rows),
	}
	if err := e.history.SaveRun(ctx, run); err != nil {
		slog.Warn("Failed to record pricing run", "error", err)
	}
}

func validateItems(items []model.InventoryItem) error {
	if len(items) == 0 {
		return common.NewUserError("nothing to price", common.ErrNoItems)
	}
	for i, item := range items {
		if strings.TrimSpace(item.Name) == "" {
			return common.NewUserError(
				fmt.Sprintf("item at index %d has an empty name", i),
				common.ErrInvalidItem)
		}
		if item.Quantity < 1 {
			return common.NewUserError(
				fmt.Sprintf("item %q has quantity %d, must be at least 1", item.Name, item.Quantity),
				common.ErrInvalidItem)
		}
	}
	return nil
}
