// Package model defines the core domain types shared across the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogEntry is one item record from the remote price catalog. Any of the
// averaged price windows may be absent for a given item; absent windows are
// nil. Entries are never mutated after load.
type CatalogEntry struct {
	Name      string           `json:"name"`
	Avg30Day  *decimal.Decimal `json:"a30,omitempty"`
	Avg60Day  *decimal.Decimal `json:"a60,omitempty"`
	Avg90Day  *decimal.Decimal `json:"a90,omitempty"`
	Avg6Month *decimal.Decimal `json:"a6m,omitempty"`
	AvgYear   *decimal.Decimal `json:"a1y,omitempty"`
}

// Catalog is a full snapshot of the remote price list for one server
// category. Order matters: resolution takes the first matching entry.
type Catalog struct {
	FetchedAt time.Time
	Entries   []CatalogEntry
}

// Age reports how old the snapshot is relative to now.
func (c *Catalog) Age(now time.Time) time.Duration {
	return now.Sub(c.FetchedAt)
}

// Empty reports whether the catalog has no entries to match against.
func (c *Catalog) Empty() bool {
	return c == nil || len(c.Entries) == 0
}
