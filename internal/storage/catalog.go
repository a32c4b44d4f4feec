// Package storage implements persistence for the catalog snapshot cache and
// the pricing-run history.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stashworks/appraise/internal/model"
)

// DefaultCatalogTTL is how long a cached snapshot stays valid.
const DefaultCatalogTTL = 7 * 24 * time.Hour

// Classified cache-miss errors. Callers treat all of these as "no usable
// snapshot"; the distinction exists for diagnostics.
var (
	ErrSnapshotMissing = errors.New("catalog snapshot not found")
	ErrSnapshotCorrupt = errors.New("catalog snapshot corrupted")
	ErrSnapshotExpired = errors.New("catalog snapshot expired")
)

// snapshot is the on-disk shape of a cached catalog.
type snapshot struct {
	FetchedAt time.Time            `json:"fetchedAt"`
	Entries   []model.CatalogEntry `json:"entries"`
}

// CatalogCache persists one timestamped catalog snapshot to a single file.
// The whole catalog is one unit with one freshness clock; there is no
// partial invalidation.
type CatalogCache struct {
	now  func() time.Time
	path string
	ttl  time.Duration
}

// NewCatalogCache creates a cache backed by the file at path. A ttl of zero
// falls back to DefaultCatalogTTL.
func NewCatalogCache(path string, ttl time.Duration) (*CatalogCache, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{
		path: path,
		ttl:  ttl,
		now:  time.Now,
	}, nil
}

// Load reads the persisted snapshot. It returns ErrSnapshotMissing when the
// file is absent, ErrSnapshotCorrupt when it cannot be parsed or carries no
// timestamp, and ErrSnapshotExpired when its age has reached the TTL.
func (c *CatalogCache) Load(ctx context.Context) (*model.Catalog, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSnapshotMissing
		}
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if snap.FetchedAt.IsZero() {
		return nil, fmt.Errorf("%w: missing fetchedAt", ErrSnapshotCorrupt)
	}

	if c.now().Sub(snap.FetchedAt) >= c.ttl {
		return nil, fmt.Errorf("%w: fetched at %s", ErrSnapshotExpired, snap.FetchedAt.Format(time.RFC3339))
	}

	return &model.Catalog{
		FetchedAt: snap.FetchedAt,
		Entries:   snap.Entries,
	}, nil
}

// Save replaces the snapshot on disk. The write goes to a temporary file in
// the same directory followed by a rename, so a concurrent reader never
// observes a half-written snapshot.
func (c *CatalogCache) Save(ctx context.Context, catalog *model.Catalog) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if catalog == nil {
		return errors.New("cannot save nil catalog")
	}

	fetchedAt := catalog.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = c.now().UTC()
	}

	data, err := json.Marshal(snapshot{
		FetchedAt: fetchedAt,
		Entries:   catalog.Entries,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	return nil
}

// Clear removes the snapshot file. A missing file is not an error.
func (c *CatalogCache) Clear() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// Path returns the snapshot file location.
func (c *CatalogCache) Path() string {
	return c.path
}

// TTL returns the configured time-to-live.
func (c *CatalogCache) TTL() time.Duration {
	return c.ttl
}
