package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashworks/appraise/internal/common"
	"github.com/stashworks/appraise/internal/model"
	"github.com/stashworks/appraise/internal/pricing"
	"github.com/stashworks/appraise/internal/service"
	"github.com/stashworks/appraise/internal/storage"
)

func dec(t *testing.T, v string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return &d
}

func newTestEngine(t *testing.T, store *mockStore, fetcher *mockFetcher, opts ...Option) *Engine {
	t.Helper()
	eng, err := New(store, fetcher, pricing.NewResolver(pricing.MatchSubstring), opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_EndToEnd(t *testing.T) {
	store := &mockStore{
		loadCatalog: &model.Catalog{
			FetchedAt: time.Now().UTC(),
			Entries: []model.CatalogEntry{
				{Name: "Black Pearl", Avg30Day: dec(t, "120")},
			},
		},
	}
	fetcher := &mockFetcher{}
	eng := newTestEngine(t, store, fetcher)

	rows, stats, err := eng.Price(context.Background(), []model.InventoryItem{
		{Name: "Black Pearl", Quantity: 3, Category: "Gem"},
	})
	require.NoError(t, err)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "Black Pearl", row.Name)
	assert.Equal(t, 3, row.Quantity)
	assert.Equal(t, "Gem", row.Category)
	require.NotNil(t, row.UnitPrice)
	assert.True(t, row.UnitPrice.Equal(decimal.NewFromInt(120)))
	require.NotNil(t, row.ExtendedTotal)
	assert.True(t, row.ExtendedTotal.Equal(decimal.NewFromInt(360)))

	assert.Equal(t, 1, stats.Priced)
	assert.Equal(t, 0, stats.Unpriced)
	assert.Equal(t, service.SourceCache, stats.CatalogSource)
	assert.Equal(t, 0, fetcher.calls, "valid cache must not trigger a fetch")
}

func TestEngine_CacheMissFetchesAndSaves(t *testing.T) {
	remote := &model.Catalog{
		FetchedAt: time.Now().UTC(),
		Entries:   []model.CatalogEntry{{Name: "Garlic", Avg30Day: dec(t, "2")}},
	}
	store := &mockStore{loadErr: storage.ErrSnapshotExpired}
	fetcher := &mockFetcher{catalog: remote}
	eng := newTestEngine(t, store, fetcher)

	rows, stats, err := eng.Price(context.Background(), []model.InventoryItem{
		{Name: "Garlic", Quantity: 2},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls)
	require.Len(t, store.saved, 1)
	assert.Equal(t, remote, store.saved[0])
	assert.Equal(t, service.SourceRemote, stats.CatalogSource)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Priced())
}

func TestEngine_SaveFailureDoesNotAbort(t *testing.T) {
	remote := &model.Catalog{
		FetchedAt: time.Now().UTC(),
		Entries:   []model.CatalogEntry{{Name: "Garlic", Avg30Day: dec(t, "2")}},
	}
	store := &mockStore{
		loadErr: storage.ErrSnapshotMissing,
		saveErr: errors.New("disk full"),
	}
	fetcher := &mockFetcher{catalog: remote}
	eng := newTestEngine(t, store, fetcher)

	rows, stats, err := eng.Price(context.Background(), []model.InventoryItem{
		{Name: "Garlic", Quantity: 1},
	})
	require.NoError(t, err)

	// The freshly fetched catalog still serves this run.
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Priced())
	assert.Equal(t, service.SourceRemote, stats.CatalogSource)
}

func TestEngine_DegradedMode(t *testing.T) {
	store := &mockStore{loadErr: storage.ErrSnapshotMissing}
	fetcher := &mockFetcher{err: errors.New("connection refused")}
	eng := newTestEngine(t, store, fetcher)

	items := []model.InventoryItem{
		{Name: "Black Pearl", Quantity: 3},
		{Name: "Garlic", Quantity: 1},
		{Name: "Nightshade", Quantity: 7},
	}

	rows, stats, err := eng.Price(context.Background(), items)
	require.NoError(t, err, "pricing-data failures must not fail the run")

	require.Len(t, rows, len(items), "one row per input even without a catalog")
	for _, row := range rows {
		assert.Nil(t, row.UnitPrice)
		assert.Nil(t, row.ExtendedTotal)
	}
	assert.Equal(t, 0, stats.Priced)
	assert.Equal(t, len(items), stats.Unpriced)
	assert.Equal(t, service.SourceNone, stats.CatalogSource)
}

func TestEngine_OutputOrdering(t *testing.T) {
	store := &mockStore{loadCatalog: &model.Catalog{FetchedAt: time.Now().UTC()}}
	eng := newTestEngine(t, store, &mockFetcher{})

	rows, _, err := eng.Price(context.Background(), []model.InventoryItem{
		{Name: "nightshade", Quantity: 1},
		{Name: "Black Pearl", Quantity: 1},
		{Name: "garlic", Quantity: 1},
		{Name: "Ginseng", Quantity: 1},
	})
	require.NoError(t, err)

	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	assert.Equal(t, []string{"Black Pearl", "garlic", "Ginseng", "nightshade"}, names,
		"output must be case-insensitively sorted by item name")
}

func TestEngine_ValidationFailsFast(t *testing.T) {
	tests := []struct {
		name  string
		items []model.InventoryItem
	}{
		{name: "no items", items: nil},
		{name: "empty name", items: []model.InventoryItem{{Name: "  ", Quantity: 1}}},
		{name: "zero quantity", items: []model.InventoryItem{{Name: "Garlic", Quantity: 0}}},
		{name: "negative quantity", items: []model.InventoryItem{{Name: "Garlic", Quantity: -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{loadErr: storage.ErrSnapshotMissing}
			fetcher := &mockFetcher{}
			eng := newTestEngine(t, store, fetcher)

			_, _, err := eng.Price(context.Background(), tt.items)
			require.Error(t, err)

			var userErr *common.UserError
			assert.True(t, errors.As(err, &userErr), "contract violations surface as UserError")
			assert.Equal(t, 0, store.loadCalls, "no cache activity before validation")
			assert.Equal(t, 0, fetcher.calls, "no network activity before validation")
		})
	}
}

func TestEngine_RecordsHistory(t *testing.T) {
	store := &mockStore{
		loadCatalog: &model.Catalog{
			FetchedAt: time.Now().UTC(),
			Entries:   []model.CatalogEntry{{Name: "Black Pearl", Avg30Day: dec(t, "120")}},
		},
	}
	history := &mockHistory{}
	eng := newTestEngine(t, store, &mockFetcher{}, WithHistory(history))

	_, _, err := eng.Price(context.Background(), []model.InventoryItem{
		{Name: "Black Pearl", Quantity: 2},
		{Name: "Unknown Trinket", Quantity: 1},
	})
	require.NoError(t, err)

	require.Len(t, history.runs, 1)
	run := history.runs[0]
	assert.Equal(t, 2, run.TotalItems)
	assert.Equal(t, 1, run.Priced)
	assert.Equal(t, 1, run.Unpriced)
	assert.True(t, run.GrandTotal.Equal(decimal.NewFromInt(240)), "got %s", run.GrandTotal)
	assert.Equal(t, service.SourceCache, run.CatalogSource)
}

func TestEngine_HistoryFailureTolerated(t *testing.T) {
	store := &mockStore{loadCatalog: &model.Catalog{FetchedAt: time.Now().UTC()}}
	history := &mockHistory{saveErr: errors.New("database locked")}
	eng := newTestEngine(t, store, &mockFetcher{}, WithHistory(history))

	rows, _, err := eng.Price(context.Background(), []model.InventoryItem{
		{Name: "Garlic", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestEngine_ProgressCallback(t *testing.T) {
	store := &mockStore{loadCatalog: &model.Catalog{FetchedAt: time.Now().UTC()}}
	var seen []int
	eng := newTestEngine(t, store, &mockFetcher{}, WithProgress(func(done int) {
		seen = append(seen, done)
	}))

	_, _, err := eng.Price(context.Background(), []model.InventoryItem{
		{Name: "Garlic", Quantity: 1},
		{Name: "Ginseng", Quantity: 1},
		{Name: "Nightshade", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestNew_RequiresDependencies(t *testing.T) {
	resolver := pricing.NewResolver(pricing.MatchSubstring)

	_, err := New(nil, &mockFetcher{}, resolver)
	assert.Error(t, err)

	_, err = New(&mockStore{}, nil, resolver)
	assert.Error(t, err)

	_, err = New(&mockStore{}, &mockFetcher{}, nil)
	assert.Error(t, err)
}
