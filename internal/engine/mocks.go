package engine

import (
	"context"
	"sync"

	"github.com/stashworks/appraise/internal/model"
	"github.com/stashworks/appraise/internal/service"
)

// mockStore is a test double for the catalog store.
type mockStore struct {
	loadCatalog *model.Catalog
	loadErr     error
	saveErr     error
	mu          sync.Mutex
	saved       []*model.Catalog
	loadCalls   int
}

func (m *mockStore) Load(_ context.Context) (*model.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loadCatalog, nil
}

func (m *mockStore) Save(_ context.Context, catalog *model.Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, catalog)
	return m.saveErr
}

// mockFetcher is a test double for the catalog fetcher.
type mockFetcher struct {
	catalog *model.Catalog
	err     error
	mu      sync.Mutex
	calls   int
}

func (m *mockFetcher) Fetch(_ context.Context) (*model.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.catalog, nil
}

// mockHistory records SaveRun calls.
type mockHistory struct {
	saveErr error
	mu      sync.Mutex
	runs    []service.RunRecord
}

func (m *mockHistory) SaveRun(_ context.Context, run *service.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockHistory) ListRuns(_ context.Context, _ int) ([]service.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.RunRecord(nil), m.runs...), nil
}

func (m *mockHistory) Close() error {
	return nil
}
