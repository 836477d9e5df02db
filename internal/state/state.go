// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state persists per-(publication, year) query state so harvest
// runs are resumable across process restarts and repeated runs stay cheap.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const dbFile = "harvest.db"

// YearlyQueryState records the last known remote total for one
// (publication, year) pair. The change detector compares it against a
// live probe to decide whether a refetch is needed.
type YearlyQueryState struct {
	Identifier     string    `json:"identifier"`
	Year           int       `json:"year"`
	LastTotalCount int       `json:"last_total_count"`
	LastFetchedAt  time.Time `json:"last_fetched_at"`
}

// Store manages the query-state SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at stateDir/harvest.db, creating
// the schema if needed.
func NewStore(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening state database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS yearly_query_state (
			identifier TEXT NOT NULL,
			year INTEGER NOT NULL,
			last_total_count INTEGER NOT NULL,
			last_fetched_at TEXT NOT NULL,
			PRIMARY KEY (identifier, year)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_state_identifier ON yearly_query_state(identifier)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get returns the state for one (identifier, year), or nil when none is
// recorded yet.
func (s *Store) Get(ctx context.Context, identifier string, year int) (*YearlyQueryState, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT identifier, year, last_total_count, last_fetched_at
		 FROM yearly_query_state WHERE identifier = ? AND year = ?`,
		identifier, year)

	st, err := scanState(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading state for %s/%d: %w", identifier, year, err)
	}
	return &st, nil
}

// Upsert records a fetch attempt: the remote total observed and when it
// was observed. Called on successful harvests and on count-unchanged
// skips alike, so LastFetchedAt always reflects the last comparison.
func (s *Store) Upsert(ctx context.Context, st YearlyQueryState) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO yearly_query_state (identifier, year, last_total_count, last_fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(identifier, year) DO UPDATE SET
			last_total_count = excluded.last_total_count,
			last_fetched_at = excluded.last_fetched_at`,
		st.Identifier, st.Year, st.LastTotalCount, st.LastFetchedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upserting state for %s/%d: %w", st.Identifier, st.Year, err)
	}
	return nil
}

// List returns recorded states, all of them when identifier is empty,
// ordered by identifier then year.
func (s *Store) List(ctx context.Context, identifier string) ([]YearlyQueryState, error) {
	query := `SELECT identifier, year, last_total_count, last_fetched_at
		 FROM yearly_query_state`
	args := []any{}
	if identifier != "" {
		query += ` WHERE identifier = ?`
		args = append(args, identifier)
	}
	query += ` ORDER BY identifier, year`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing state: %w", err)
	}
	defer rows.Close()

	var states []YearlyQueryState
	for rows.Next() {
		st, err := scanState(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning state row: %w", err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

func scanState(scan func(...any) error) (YearlyQueryState, error) {
	var st YearlyQueryState
	var fetchedAt string
	if err := scan(&st.Identifier, &st.Year, &st.LastTotalCount, &fetchedAt); err != nil {
		return YearlyQueryState{}, err
	}
	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return YearlyQueryState{}, fmt.Errorf("parsing last_fetched_at %q: %w", fetchedAt, err)
	}
	st.LastFetchedAt = t
	return st, nil
}
