package main

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stashworks/appraise/internal/config"
	"github.com/stashworks/appraise/internal/market"
	"github.com/stashworks/appraise/internal/model"
	"github.com/stashworks/appraise/internal/storage"
)

// timeNow is stubbed in tests.
var timeNow = time.Now

// initCatalogCache builds the snapshot cache from configuration.
func initCatalogCache() (*storage.CatalogCache, error) {
	path := viper.GetString("cache.path")
	if path == "" {
		path = filepath.Join(config.DefaultDataDir(), "catalog.json")
	}
	path = config.ExpandPath(path)

	ttl := viper.GetDuration("cache.ttl")
	if ttl <= 0 {
		ttl = storage.DefaultCatalogTTL
	}

	return storage.NewCatalogCache(path, ttl)
}

// initMarketClient builds the catalog fetcher from configuration.
func initMarketClient() (*market.Client, error) {
	baseURL := viper.GetString("market.base_url")
	serverCategory := viper.GetString("market.server_category")
	return market.NewClient(baseURL, serverCategory)
}

// openHistory opens the run-history database with proper path expansion.
func openHistory() (*storage.HistoryStore, error) {
	path := viper.GetString("history.path")
	if path == "" {
		path = filepath.Join(config.DefaultDataDir(), "history.db")
	}
	path = config.ExpandPath(path)

	return storage.NewHistoryStore(path)
}

// readItems parses the pipeline input: one item per line,
// name<TAB>quantity<TAB>category, the last two columns optional. Blank lines
// and #-comments are skipped. Missing or non-numeric quantities coerce to 1
// at this boundary so the pipeline only ever sees quantities >= 1.
func readItems(r io.Reader) ([]model.InventoryItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var items []model.InventoryItem
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		name := strings.TrimSpace(fields[0])
		if name == "" {
			return nil, fmt.Errorf("line %d: missing item name", lineNo)
		}

		quantity := 1
		if len(fields) > 1 {
			if parsed, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil && parsed >= 1 {
				quantity = parsed
			}
		}

		category := ""
		if len(fields) > 2 {
			category = strings.TrimSpace(fields[2])
		}

		items = append(items, model.InventoryItem{
			Name:     name,
			Quantity: quantity,
			Category: category,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	return items, nil
}

// formatAge renders a snapshot age for the cache status output.
func formatAge(age time.Duration) string {
	if age < time.Minute {
		return age.Round(time.Second).String()
	}
	if age < 24*time.Hour {
		return age.Round(time.Minute).String()
	}
	days := int(age.Hours()) / 24
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
