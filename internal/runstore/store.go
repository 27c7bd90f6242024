package runstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kibbyd/spin-annealer/internal/anneal"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id              TEXT PRIMARY KEY,
	seed                INTEGER NOT NULL,
	config_json         TEXT,
	outcome             TEXT NOT NULL,
	iterations          INTEGER NOT NULL,
	final_energy        REAL NOT NULL,
	final_magnetization REAL NOT NULL,
	final_label         TEXT NOT NULL,
	final_spins         BLOB NOT NULL,
	created_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS trace (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	iteration     INTEGER NOT NULL,
	temperature   REAL NOT NULL,
	energy        REAL NOT NULL,
	magnetization REAL NOT NULL,
	accepted      INTEGER NOT NULL,
	label         TEXT NOT NULL,
	state_hash    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
CREATE INDEX IF NOT EXISTS idx_trace_run ON trace(run_id, iteration);

CREATE TABLE IF NOT EXISTS run_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	detail_json TEXT,
	reason      TEXT,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store archives completed runs and their traces in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
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

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion db-accessor

// #region new-run-id
// NewRunID mints a run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// #endregion new-run-id

// #region save-run
// SaveRun inserts a run summary and its full trace atomically.
func (s *Store) SaveRun(rec RunRecord, trace []anneal.IterationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var configPtr interface{}
	if rec.ConfigJSON != "" {
		configPtr = rec.ConfigJSON
	}

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, seed, config_json, outcome, iterations, final_energy,
		                   final_magnetization, final_label, final_spins, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Seed, configPtr, rec.Outcome, rec.Iterations, rec.FinalEnergy,
		rec.FinalMagnetization, rec.FinalLabel, encodeSpins(rec.FinalSpins),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, row := range trace {
		_, err = tx.Exec(
			`INSERT INTO trace (run_id, iteration, temperature, energy, magnetization, accepted, label, state_hash)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, row.Iteration, row.Temperature, row.Energy, row.Magnetization,
			row.Accepted, row.Label, row.StateHash,
		)
		if err != nil {
			return fmt.Errorf("insert trace row %d: %w", row.Iteration, err)
		}
	}

	return tx.Commit()
}

// #endregion save-run

// #region get-run
// GetRun retrieves one archived run by ID.
func (s *Store) GetRun(id string) (RunRecord, error) {
	var rec RunRecord
	var configJSON sql.NullString
	var spinsBlob []byte
	var createdStr string

	err := s.db.QueryRow(
		`SELECT run_id, seed, config_json, outcome, iterations, final_energy,
		        final_magnetization, final_label, final_spins, created_at
		 FROM runs WHERE run_id = ?`, id,
	).Scan(&rec.RunID, &rec.Seed, &configJSON, &rec.Outcome, &rec.Iterations,
		&rec.FinalEnergy, &rec.FinalMagnetization, &rec.FinalLabel, &spinsBlob, &createdStr)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %s: %w", id, err)
	}

	if configJSON.Valid {
		rec.ConfigJSON = configJSON.String
	}
	rec.FinalSpins = decodeSpins(spinsBlob)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent archived runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seed, config_json, outcome, iterations, final_energy,
		        final_magnetization, final_label, final_spins, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var configJSON sql.NullString
		var spinsBlob []byte
		var createdStr string

		if err := rows.Scan(&rec.RunID, &rec.Seed, &configJSON, &rec.Outcome, &rec.Iterations,
			&rec.FinalEnergy, &rec.FinalMagnetization, &rec.FinalLabel, &spinsBlob, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if configJSON.Valid {
			rec.ConfigJSON = configJSON.String
		}
		rec.FinalSpins = decodeSpins(spinsBlob)
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-runs

// #region trace
// Trace returns the archived per-iteration rows for a run, ordered by
// iteration.
func (s *Store) Trace(runID string) ([]TraceRow, error) {
	rows, err := s.db.Query(
		`SELECT run_id, iteration, temperature, energy, magnetization, accepted, label, state_hash
		 FROM trace WHERE run_id = ? ORDER BY iteration ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("trace %s: %w", runID, err)
	}
	defer rows.Close()

	var out []TraceRow
	for rows.Next() {
		var r TraceRow
		if err := rows.Scan(&r.RunID, &r.Iteration, &r.Temperature, &r.Energy,
			&r.Magnetization, &r.Accepted, &r.Label, &r.StateHash); err != nil {
			return nil, fmt.Errorf("scan trace row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// #endregion trace

// #region spin-encoding
// Spins pack one byte each: 1 for +1, 0 for -1.
func encodeSpins(spins []int8) []byte {
	buf := make([]byte, len(spins))
	for i, s := range spins {
		if s > 0 {
			buf[i] = 1
		}
	}
	return buf
}

func decodeSpins(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, v := range b {
		if v > 0 {
			out[i] = 1
		} else {
			out[i] = -1
		}
	}
	return out
}

// #endregion spin-encoding
