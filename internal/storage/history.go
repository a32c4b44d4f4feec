package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/stashworks/appraise/internal/service"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 1

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS runs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					run_at DATETIME NOT NULL,
					catalog_source TEXT NOT NULL,
					total_items INTEGER NOT NULL,
					priced INTEGER NOT NULL,
					unpriced INTEGER NOT NULL,
					grand_total TEXT NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_runs_run_at ON runs(run_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// HistoryStore implements the RunHistory interface using SQLite.
type HistoryStore struct {
	db     *sql.DB
	dbPath string
}

// NewHistoryStore opens (creating if necessary) the run-history database.
func NewHistoryStore(dbPath string) (*HistoryStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &HistoryStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Migrate brings the schema up to ExpectedSchemaVersion.
func (s *HistoryStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion); err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}

// SaveRun persists one completed pricing run.
func (s *HistoryStore) SaveRun(ctx context.Context, run *service.RunRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_at, catalog_source, total_items, priced, unpriced, grand_total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunAt, string(run.CatalogSource), run.TotalItems, run.Priced, run.Unpriced,
		run.GrandTotal.String())
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		run.ID = id
	}

	return nil
}

// ListRuns returns the most recent runs, newest first. A limit of zero or
// less returns everything.
func (s *HistoryStore) ListRuns(ctx context.Context, limit int) ([]service.RunRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `SELECT id, run_at, catalog_source, total_items, priced, unpriced, grand_total
	          FROM runs ORDER BY run_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("Failed to close rows", "error", closeErr)
		}
	}()

	var runs []service.RunRecord
	for rows.Next() {
		var run service.RunRecord
		var source, total string
		if err := rows.Scan(&run.ID, &run.RunAt, &source, &run.TotalItems,
			&run.Priced, &run.Unpriced, &total); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.CatalogSource = service.CatalogSource(source)
		grandTotal, parseErr := decimal.NewFromString(total)
		if parseErr != nil {
			return nil, fmt.Errorf("failed to parse grand total %q: %w", total, parseErr)
		}
		run.GrandTotal = grandTotal
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}
