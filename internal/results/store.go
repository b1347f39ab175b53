// Package results persists per-relation sweep results in SQLite so an
// interrupted sweep can resume without recomputing finished relations.
package results

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danmackay/relation-probe/go-sweep/internal/sweep"
)

// DBFileName is the database file created inside the results directory.
const DBFileName = "sweep_results.db"

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS relation_results (
	name        TEXT PRIMARY KEY,
	payload     TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sweep_runs (
	run_id      TEXT PRIMARY KEY,
	config_json TEXT,
	started_at  TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// Store keeps one row per relation. A relation's result is written whole once
// its sweep finishes, never partially.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// Open creates or opens the results database inside dir and runs migrations.
func Open(dir string) (*Store, error) {
	db, err := sql.Open("sqlite", filepath.Join(dir, DBFileName))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region load
// Load reads the persisted result for a relation. The second return reports
// whether one exists.
func (s *Store) Load(name string) (*sweep.RelationResult, bool, error) {
	var payload string
	err := s.db.QueryRow(
		`SELECT payload FROM relation_results WHERE name = ?`, name,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load result %q: %w", name, err)
	}

	var res sweep.RelationResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, false, fmt.Errorf("unmarshal result %q: %w", name, err)
	}
	return &res, true, nil
}
// #endregion load

// #region save
// Save upserts the full result for a relation.
func (s *Store) Save(name string, res *sweep.RelationResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result %q: %w", name, err)
	}

	_, err = s.db.Exec(
		`INSERT INTO relation_results (name, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		name, string(payload), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save result %q: %w", name, err)
	}
	return nil
}
// #endregion save

// #region record-run
// RecordRun stores the run id and its configuration for later inspection.
func (s *Store) RecordRun(runID, configJSON string) error {
	var configPtr interface{}
	if configJSON != "" {
		configPtr = configJSON
	}
	_, err := s.db.Exec(
		`INSERT INTO sweep_runs (run_id, config_json, started_at) VALUES (?, ?, ?)`,
		runID, configPtr, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", runID, err)
	}
	return nil
}
// #endregion record-run

// #region list-names
// ListNames returns the names of all persisted relations, sorted.
func (s *Store) ListNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM relation_results ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
// #endregion list-names
