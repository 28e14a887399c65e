package testcmd

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store persists effectiveness entries to SQLite so command statistics
// survive across task runs on the same host.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the effectiveness database at dbPath.
func NewStore(ctx context.Context, dbPath string) (*Store, error) {
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open effectiveness database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping effectiveness database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS effectiveness (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		repo       TEXT NOT NULL,
		command    TEXT NOT NULL,
		category   TEXT NOT NULL,
		confidence REAL NOT NULL,
		success    INTEGER NOT NULL,
		at_unix    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_effectiveness_repo ON effectiveness(repo, at_unix);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Append inserts one entry.
func (s *Store) Append(repo string, entry EffectivenessEntry) error {
	success := 0
	if entry.Success {
		success = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO effectiveness (repo, command, category, confidence, success, at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		repo, entry.Command, string(entry.Category), entry.Confidence, success, entry.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert effectiveness entry: %w", err)
	}
	return nil
}

// RecentSuccessRate reports the success rate over the newest limit entries
// for a repository. Returns zero with ok=false when there is no history.
func (s *Store) RecentSuccessRate(ctx context.Context, repo string, limit int) (float64, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(success), 0) FROM (
			SELECT success FROM effectiveness WHERE repo = ? ORDER BY at_unix DESC LIMIT ?
		)`, repo, limit)

	var total, successes int
	if err := row.Scan(&total, &successes); err != nil {
		return 0, false, fmt.Errorf("failed to query effectiveness: %w", err)
	}
	if total == 0 {
		return 0, false, nil
	}
	return float64(successes) / float64(total), true, nil
}
