// Package pricing resolves item names to representative prices against a
// catalog snapshot.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/stashworks/appraise/internal/model"
)

// MatchMode selects how item names are matched against catalog entries.
type MatchMode string

const (
	// MatchSubstring takes the first entry whose name contains the item
	// name, in catalog order. One item name being a substring of another
	// can select the wrong entry; this mirrors the long-standing behavior
	// reports are calibrated against, so it stays the default.
	MatchSubstring MatchMode = "substring"
	// MatchExactFirst prefers an exact name match and only falls back to
	// the substring scan when none exists.
	MatchExactFirst MatchMode = "exact-first"
)

// priceWindows is the fixed fallback order for extracting a representative
// price from a matched entry.
var priceWindows = []struct {
	get  func(*model.CatalogEntry) *decimal.Decimal
	name string
}{
	{name: "30-day", get: func(e *model.CatalogEntry) *decimal.Decimal { return e.Avg30Day }},
	{name: "60-day", get: func(e *model.CatalogEntry) *decimal.Decimal { return e.Avg60Day }},
	{name: "90-day", get: func(e *model.CatalogEntry) *decimal.Decimal { return e.Avg90Day }},
	{name: "yearly", get: func(e *model.CatalogEntry) *decimal.Decimal { return e.AvgYear }},
	{name: "6-month", get: func(e *model.CatalogEntry) *decimal.Decimal { return e.Avg6Month }},
}

// Resolver finds the best catalog entry for an item name and extracts a
// single price from it. It performs no I/O and never mutates the catalog.
type Resolver struct {
	mode MatchMode
}

// NewResolver creates a resolver. An empty mode means MatchSubstring.
func NewResolver(mode MatchMode) *Resolver {
	if mode == "" {
		mode = MatchSubstring
	}
	return &Resolver{mode: mode}
}

// Resolve returns the first non-nil price window of the first matching
// entry, or nil when nothing matches or the matched entry carries no price.
func (r *Resolver) Resolve(catalog *model.Catalog, itemName string) *decimal.Decimal {
	entry := r.match(catalog, itemName)
	if entry == nil {
		return nil
	}

	for _, window := range priceWindows {
		if price := window.get(entry); price != nil {
			return price
		}
	}
	return nil
}

func (r *Resolver) match(catalog *model.Catalog, itemName string) *model.CatalogEntry {
	if catalog.Empty() || itemName == "" {
		return nil
	}

	if r.mode == MatchExactFirst {
		for i := range catalog.Entries {
			if catalog.Entries[i].Name == itemName {
				return &catalog.Entries[i]
			}
		}
	}

	// Case-sensitive substring scan, first match wins.
	for i := range catalog.Entries {
		if strings.Contains(catalog.Entries[i].Name, itemName) {
			return &catalog.Entries[i]
		}
	}
	return nil
}
