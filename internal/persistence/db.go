// Package persistence provides SQLite storage for run traces.
package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-society/internal/config"
	"github.com/talgya/mini-society/internal/trace"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusExtinct   = "extinct"
	StatusFailed    = "failed"
)

// ErrNoRun is returned when a step is recorded before BeginRun.
var ErrNoRun = errors.New("no active run")

// DB wraps a SQLite connection holding runs and their per-step records.
// A DB records into at most one active run at a time.
type DB struct {
	conn  *sqlx.DB
	runID string
}

// RunInfo is the stored metadata of one run.
type RunInfo struct {
	ID         string `db:"id"`
	Seed       int64  `db:"seed"`
	ConfigJSON string `db:"config_json"`
	StartedAt  string `db:"started_at"`
	FinishedAt string `db:"finished_at"`
	Status     string `db:"status"`
	FinalStep  int    `db:"final_step"`
}

type stepRow struct {
	RunID string `db:"run_id"`
	trace.Record
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		final_step INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS steps (
		run_id TEXT NOT NULL REFERENCES runs(id),
		time INTEGER NOT NULL,
		population INTEGER NOT NULL,
		police INTEGER NOT NULL,
		criminal INTEGER NOT NULL,
		situations INTEGER NOT NULL,
		offers INTEGER NOT NULL,
		offers_criminal INTEGER NOT NULL,
		offers_civilian INTEGER NOT NULL,
		offers_police INTEGER NOT NULL,
		accepted INTEGER NOT NULL,
		interactions INTEGER NOT NULL,
		max_wealth REAL NOT NULL,
		mean_honesty REAL NOT NULL,
		PRIMARY KEY (run_id, time)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and makes it the target of Record.
func (db *DB) BeginRun(seed int64, cfg config.Config) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}

	id := uuid.NewString()
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, seed, config_json, started_at, status) VALUES (?, ?, ?, ?, ?)",
		id, seed, string(cfgJSON), time.Now().UTC().Format(time.RFC3339), StatusRunning,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	db.runID = id
	slog.Info("run registered", "run_id", id, "seed", seed)
	return id, nil
}

// Record stores one step of the active run. It implements trace.Recorder.
func (db *DB) Record(r trace.Record) error {
	if db.runID == "" {
		return ErrNoRun
	}
	_, err := db.conn.NamedExec(`INSERT INTO steps
		(run_id, time, population, police, criminal, situations, offers,
		 offers_criminal, offers_civilian, offers_police, accepted, interactions,
		 max_wealth, mean_honesty)
		VALUES (:run_id, :time, :population, :police, :criminal, :situations, :offers,
		 :offers_criminal, :offers_civilian, :offers_police, :accepted, :interactions,
		 :max_wealth, :mean_honesty)`,
		stepRow{RunID: db.runID, Record: r},
	)
	if err != nil {
		return fmt.Errorf("insert step %d: %w", r.Time, err)
	}
	return nil
}

// FinishRun closes the active run with the given status and step count.
func (db *DB) FinishRun(status string, finalStep int) error {
	if db.runID == "" {
		return ErrNoRun
	}
	_, err := db.conn.Exec(
		"UPDATE runs SET status = ?, final_step = ?, finished_at = ? WHERE id = ?",
		status, finalStep, time.Now().UTC().Format(time.RFC3339), db.runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", db.runID, err)
	}
	slog.Info("run finished", "run_id", db.runID, "status", status, "final_step", finalStep)
	db.runID = ""
	return nil
}

// Run returns the metadata of a stored run.
func (db *DB) Run(id string) (RunInfo, error) {
	var info RunInfo
	err := db.conn.Get(&info, "SELECT * FROM runs WHERE id = ?", id)
	return info, err
}

// Steps returns every recorded step of a run in time order.
func (db *DB) Steps(runID string) ([]trace.Record, error) {
	var rows []stepRow
	err := db.conn.Select(&rows, "SELECT * FROM steps WHERE run_id = ? ORDER BY time", runID)
	if err != nil {
		return nil, err
	}
	records := make([]trace.Record, len(rows))
	for i, row := range rows {
		records[i] = row.Record
	}
	return records, nil
}
