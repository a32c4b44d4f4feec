package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashworks/appraise/internal/model"
)

func dec(t *testing.T, v string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	require.NoError(t, err)
	return &d
}

func TestResolver_WindowFallbackOrder(t *testing.T) {
	tests := []struct {
		entry    model.CatalogEntry
		expected string
		name     string
	}{
		{
			name: "30-day wins when present",
			entry: model.CatalogEntry{
				Name:     "Black Pearl",
				Avg30Day: dec(t, "120"),
				Avg60Day: dec(t, "110"),
				AvgYear:  dec(t, "90"),
			},
			expected: "120",
		},
		{
			name: "90-day beats yearly",
			entry: model.CatalogEntry{
				Name:     "Sulfurous Ash",
				Avg90Day: dec(t, "42"),
				AvgYear:  dec(t, "99"),
			},
			expected: "42",
		},
		{
			name: "yearly beats 6-month",
			entry: model.CatalogEntry{
				Name:      "Spider Silk",
				AvgYear:   dec(t, "7"),
				Avg6Month: dec(t, "8"),
			},
			expected: "7",
		},
		{
			name: "6-month is the last resort",
			entry: model.CatalogEntry{
				Name:      "Blood Moss",
				Avg6Month: dec(t, "15"),
			},
			expected: "15",
		},
	}

	resolver := NewResolver(MatchSubstring)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &model.Catalog{Entries: []model.CatalogEntry{tt.entry}}
			price := resolver.Resolve(catalog, tt.entry.Name)
			require.NotNil(t, price)
			assert.True(t, price.Equal(*dec(t, tt.expected)), "got %s, want %s", price, tt.expected)
		})
	}
}

func TestResolver_FirstMatchWins(t *testing.T) {
	// "Opal" is a substring of "Flawed Opal"; catalog order decides.
	catalog := &model.Catalog{Entries: []model.CatalogEntry{
		{Name: "Opal", Avg30Day: dec(t, "100")},
		{Name: "Flawed Opal", Avg30Day: dec(t, "20")},
	}}

	resolver := NewResolver(MatchSubstring)
	price := resolver.Resolve(catalog, "Opal")
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.NewFromInt(100)), "first entry must win, got %s", price)

	// Reversed order selects the other entry, demonstrating the ambiguity.
	reversed := &model.Catalog{Entries: []model.CatalogEntry{
		{Name: "Flawed Opal", Avg30Day: dec(t, "20")},
		{Name: "Opal", Avg30Day: dec(t, "100")},
	}}
	price = resolver.Resolve(reversed, "Opal")
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.NewFromInt(20)), "got %s", price)
}

func TestResolver_ExactFirstMode(t *testing.T) {
	catalog := &model.Catalog{Entries: []model.CatalogEntry{
		{Name: "Flawed Opal", Avg30Day: dec(t, "20")},
		{Name: "Opal", Avg30Day: dec(t, "100")},
	}}

	resolver := NewResolver(MatchExactFirst)
	price := resolver.Resolve(catalog, "Opal")
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.NewFromInt(100)), "exact match must win, got %s", price)

	// Still falls back to substring when no exact match exists.
	price = resolver.Resolve(catalog, "Opa")
	require.NotNil(t, price)
	assert.True(t, price.Equal(decimal.NewFromInt(20)), "substring fallback broken, got %s", price)
}

func TestResolver_CaseSensitive(t *testing.T) {
	catalog := &model.Catalog{Entries: []model.CatalogEntry{
		{Name: "Black Pearl", Avg30Day: dec(t, "120")},
	}}

	resolver := NewResolver(MatchSubstring)
	assert.Nil(t, resolver.Resolve(catalog, "black pearl"))
	assert.NotNil(t, resolver.Resolve(catalog, "Black Pearl"))
	assert.NotNil(t, resolver.Resolve(catalog, "Pearl"))
}

func TestResolver_Unresolved(t *testing.T) {
	resolver := NewResolver(MatchSubstring)

	t.Run("no matching entry", func(t *testing.T) {
		catalog := &model.Catalog{Entries: []model.CatalogEntry{
			{Name: "Garlic", Avg30Day: dec(t, "2")},
		}}
		assert.Nil(t, resolver.Resolve(catalog, "Nightshade"))
	})

	t.Run("match with every window absent", func(t *testing.T) {
		catalog := &model.Catalog{Entries: []model.CatalogEntry{
			{Name: "Nightshade"},
		}}
		assert.Nil(t, resolver.Resolve(catalog, "Nightshade"))
	})

	t.Run("nil catalog", func(t *testing.T) {
		assert.Nil(t, resolver.Resolve(nil, "Nightshade"))
	})

	t.Run("empty item name", func(t *testing.T) {
		catalog := &model.Catalog{Entries: []model.CatalogEntry{
			{Name: "Garlic", Avg30Day: dec(t, "2")},
		}}
		assert.Nil(t, resolver.Resolve(catalog, ""))
	})
}

func TestNewResolver_DefaultMode(t *testing.T) {
	resolver := NewResolver("")
	assert.Equal(t, MatchSubstring, resolver.mode)
}
