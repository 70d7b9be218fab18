package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"djdash/internal/domain"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const constituentsSchema = `
CREATE TABLE IF NOT EXISTS constituents (
	ticker       TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	stock_market TEXT NOT NULL,
	year_added   INTEGER NOT NULL
)`

// SQLiteStore keeps the constituent table in a SQLite database. The dashboard
// only reads it; the converter tool writes it.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a ready-to-use SQLiteStore.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(constituentsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating constituents table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// WriteConstituents replaces the table contents with c, preserving order.
func (s *SQLiteStore) WriteConstituents(ctx context.Context, c *domain.Constituents) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM constituents`); err != nil {
		return fmt.Errorf("clearing constituents: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO constituents (ticker, name, stock_market, year_added) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range c.All() {
		if _, err := stmt.ExecContext(ctx, r.Ticker, r.Name, string(r.Exchange), r.YearAdded); err != nil {
			return fmt.Errorf("inserting %s: %w", r.Ticker, err)
		}
	}
	return tx.Commit()
}

// rows returns the table as a header row plus string rows in insertion order.
func (s *SQLiteStore) rows(ctx context.Context) ([][]string, error) {
	q, err := s.db.QueryContext(ctx,
		`SELECT ticker, name, stock_market, year_added FROM constituents ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer q.Close()

	out := [][]string{{colTicker, colName, colMarket, colYearAdded}}
	for q.Next() {
		var ticker, name, market, year string
		if err := q.Scan(&ticker, &name, &market, &year); err != nil {
			return nil, err
		}
		out = append(out, []string{ticker, name, market, year})
	}
	return out, q.Err()
}

// readSQLiteRows reads an existing database opened read-only. A missing
// file or a missing constituents table is an error.
func readSQLiteRows(ctx context.Context, path string) ([][]string, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return (&SQLiteStore{db: db}).rows(ctx)
}
