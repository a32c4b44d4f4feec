package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stashworks/appraise/internal/model"
)

func TestReadItems(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedError string
		expected      []model.InventoryItem
	}{
		{
			name:  "full three columns",
			input: "Black Pearl\t3\tGem\n",
			expected: []model.InventoryItem{
				{Name: "Black Pearl", Quantity: 3, Category: "Gem"},
			},
		},
		{
			name:  "quantity defaults to one",
			input: "Ginseng\n",
			expected: []model.InventoryItem{
				{Name: "Ginseng", Quantity: 1},
			},
		},
		{
			name:  "non-numeric quantity coerces to one",
			input: "Ginseng\tlots\tReagent\n",
			expected: []model.InventoryItem{
				{Name: "Ginseng", Quantity: 1, Category: "Reagent"},
			},
		},
		{
			name:  "zero quantity coerces to one",
			input: "Ginseng\t0\n",
			expected: []model.InventoryItem{
				{Name: "Ginseng", Quantity: 1},
			},
		},
		{
			name:  "blank lines and comments skipped",
			input: "# export from 2026-03-14\n\nGarlic\t5\n   \nNightshade\t2\n",
			expected: []model.InventoryItem{
				{Name: "Garlic", Quantity: 5},
				{Name: "Nightshade", Quantity: 2},
			},
		},
		{
			name:  "windows line endings",
			input: "Garlic\t5\r\n",
			expected: []model.InventoryItem{
				{Name: "Garlic", Quantity: 5},
			},
		},
		{
			name:          "missing name is an error",
			input:         "\t3\tGem\n",
			expectedError: "missing item name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := readItems(strings.NewReader(tt.input))

			if tt.expectedError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, items)
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name     string
		expected string
		age      time.Duration
	}{
		{name: "seconds", age: 42 * time.Second, expected: "42s"},
		{name: "hours", age: 3*time.Hour + 30*time.Minute, expected: "3h30m0s"},
		{name: "one day", age: 25 * time.Hour, expected: "1 day"},
		{name: "days", age: 6*24*time.Hour + time.Hour, expected: "6 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatAge(tt.age))
		})
	}
}
