// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stashworks/appraise/internal/model"
)

// CatalogStore defines the contract for the persisted catalog snapshot.
type CatalogStore interface {
	// Load returns the cached catalog, or a classified error when the
	// snapshot is missing, corrupt, or older than the TTL. All three are
	// cache misses from the pipeline's point of view.
	Load(ctx context.Context) (*model.Catalog, error)
	// Save persists a full snapshot, replacing any prior one atomically.
	Save(ctx context.Context, catalog *model.Catalog) error
}

// CatalogFetcher retrieves a fresh catalog from the remote price service.
type CatalogFetcher interface {
	Fetch(ctx context.Context) (*model.Catalog, error)
}

// PriceResolver turns an item name into a single representative price
// against an in-memory catalog. A nil result is an unresolved item, not an
// error.
type PriceResolver interface {
	Resolve(catalog *model.Catalog, itemName string) *decimal.Decimal
}

// RunHistory records completed pricing runs for later inspection.
type RunHistory interface {
	SaveRun(ctx context.Context, run *RunRecord) error
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	Close() error
}

// CatalogSource identifies where the pipeline's catalog came from.
type CatalogSource string

const (
	// SourceCache means a valid snapshot was loaded from disk.
	SourceCache CatalogSource = "cache"
	// SourceRemote means the catalog was fetched fresh this run.
	SourceRemote CatalogSource = "remote"
	// SourceNone means no catalog was available; everything priced unknown.
	SourceNone CatalogSource = "none"
)

// PricingStats shows the results of a pricing run.
type PricingStats struct {
	CatalogSource CatalogSource
	TotalItems    int
	Priced        int
	Unpriced      int
	Duration      time.Duration
}

// RunRecord is one row of the pricing-run history.
type RunRecord struct {
	RunAt         time.Time
	CatalogSource CatalogSource
	GrandTotal    decimal.Decimal
	ID            int64
	TotalItems    int
	Priced        int
	Unpriced      int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
