// Package sqlite stores work log entries in a SQLite database, one row per
// entry, ordered by insertion id.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"tractorlog/internal/core"
	applog "tractorlog/internal/log"

	_ "modernc.org/sqlite"
)

const (
	insertEntrySQL = `INSERT INTO log_entries
	(entry_date, customer, location, tractor, acres, cost, employee)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectEntriesSQL = `SELECT entry_date, customer, location, tractor, acres, cost, employee
	FROM log_entries ORDER BY id`
)

type Repository struct {
	db *sql.DB
}

// NewRepository opens dbPath, creating its directory, and applies pending
// migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps appends serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Append inserts e as the newest row.
func (r *Repository) Append(ctx context.Context, e core.LogEntry) error {
	res, err := r.db.ExecContext(ctx, insertEntrySQL,
		e.Date.String(), e.Customer, e.Location, e.Tractor, e.Acres, e.Cost, e.Employee)
	if err != nil {
		return &core.StoreError{Op: core.OpAppend, Err: fmt.Errorf("insert entry: %w", err)}
	}

	id, _ := res.LastInsertId()
	slog.DebugContext(ctx, "Entry saved to SQLite",
		applog.FieldComponent, applog.ComponentStore,
		"id", id,
		applog.FieldEmployee, e.Employee,
		applog.FieldCost, e.Cost)
	return nil
}

// LoadAll returns every row in insertion order.
func (r *Repository) LoadAll(ctx context.Context) ([]core.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, selectEntriesSQL)
	if err != nil {
		return nil, &core.StoreError{Op: core.OpLoad, Err: fmt.Errorf("query entries: %w", err)}
	}
	defer rows.Close()

	entries := []core.LogEntry{}
	for rows.Next() {
		var (
			e   core.LogEntry
			day string
		)
		if err := rows.Scan(&day, &e.Customer, &e.Location, &e.Tractor, &e.Acres, &e.Cost, &e.Employee); err != nil {
			return nil, &core.StoreError{Op: core.OpLoad, Err: fmt.Errorf("scan entry: %w", err)}
		}
		if e.Date, err = core.ParseDate(day); err != nil {
			return nil, &core.StoreError{Op: core.OpLoad, Err: fmt.Errorf("parse entry date %q: %w", day, err)}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: core.OpLoad, Err: fmt.Errorf("iterate entries: %w", err)}
	}
	return entries, nil
}
