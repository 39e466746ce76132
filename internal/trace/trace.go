// Package trace persists sampled playback runs in SQLite.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package trace

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/phanxgames/cadence"
)

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("trace: run not found")

// Store manages the SQLite database holding trace runs.
type Store struct {
	db *sql.DB
}

// Run is one recorded playback.
type Run struct {
	ID        int64
	Script    string
	FPS       float64
	Frames    int
	Duration  float64
	CreatedAt time.Time
}

// Sample is the value of one target property at a frame.
type Sample struct {
	Frame  int
	Time   float64
	Target string
	Prop   string
	Value  float64
}

// EventRecord is a lifecycle event observed during a run.
type EventRecord struct {
	Frame int
	Time  float64
	Type  string
	ID    string
}

// Open creates or opens a trace database at path. Parent directories are
// created as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("trace: cannot create directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("trace: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: cannot connect to database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			script TEXT NOT NULL,
			fps REAL NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			duration REAL NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS samples (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			time REAL NOT NULL,
			target TEXT NOT NULL,
			prop TEXT NOT NULL,
			value REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id, target, prop, frame);

		CREATE TABLE IF NOT EXISTS events (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			frame INTEGER NOT NULL,
			time REAL NOT NULL,
			type TEXT NOT NULL,
			anim_id TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, frame);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun records a new run and returns its id.
func (s *Store) BeginRun(script string, fps float64) (int64, error) {
	res, err := s.db.Exec("INSERT INTO runs (script, fps) VALUES (?, ?)", script, fps)
	if err != nil {
		return 0, fmt.Errorf("trace: cannot begin run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("trace: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// FinishRun stores the final frame count and duration of a run.
func (s *Store) FinishRun(runID int64, frames int, duration float64) error {
	res, err := s.db.Exec("UPDATE runs SET frames = ?, duration = ? WHERE id = ?", frames, duration, runID)
	if err != nil {
		return fmt.Errorf("trace: cannot finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// AddSamples stores samples for a run in one transaction.
func (s *Store) AddSamples(runID int64, samples []Sample) error {
	if len(samples) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("trace: cannot begin transaction: %w", err)
	}
	stmt, err := tx.Prepare("INSERT INTO samples (run_id, frame, time, target, prop, value) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("trace: cannot prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, sm := range samples {
		if _, err := stmt.Exec(runID, sm.Frame, sm.Time, sm.Target, sm.Prop, sm.Value); err != nil {
			tx.Rollback()
			return fmt.Errorf("trace: cannot save sample: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("trace: cannot commit samples: %w", err)
	}
	return nil
}

// AddEvent stores a lifecycle event for a run.
func (s *Store) AddEvent(runID int64, ev EventRecord) error {
	_, err := s.db.Exec(
		"INSERT INTO events (run_id, frame, time, type, anim_id) VALUES (?, ?, ?, ?, ?)",
		runID, ev.Frame, ev.Time, ev.Type, ev.ID,
	)
	if err != nil {
		return fmt.Errorf("trace: cannot save event: %w", err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		"SELECT id, script, fps, frames, duration, created_at FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("trace: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Script, &r.FPS, &r.Frames, &r.Duration, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("trace: cannot scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Samples returns the samples of one target property in frame order. An
// empty target or prop matches all.
func (s *Store) Samples(runID int64, target, prop string) ([]Sample, error) {
	rows, err := s.db.Query(`
		SELECT frame, time, target, prop, value FROM samples
		WHERE run_id = ? AND (? = '' OR target = ?) AND (? = '' OR prop = ?)
		ORDER BY frame, target, prop`,
		runID, target, target, prop, prop,
	)
	if err != nil {
		return nil, fmt.Errorf("trace: cannot query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sm Sample
		if err := rows.Scan(&sm.Frame, &sm.Time, &sm.Target, &sm.Prop, &sm.Value); err != nil {
			return nil, fmt.Errorf("trace: cannot scan sample: %w", err)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Events returns the events of a run in frame order.
func (s *Store) Events(runID int64) ([]EventRecord, error) {
	rows, err := s.db.Query(
		"SELECT frame, time, type, anim_id FROM events WHERE run_id = ? ORDER BY rowid",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("trace: cannot query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var ev EventRecord
		if err := rows.Scan(&ev.Frame, &ev.Time, &ev.Type, &ev.ID); err != nil {
			return nil, fmt.Errorf("trace: cannot scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Recorder is a cadence.EventSink that stores events of one run. The first
// storage error is kept and later events are dropped.
type Recorder struct {
	store  *Store
	runID  int64
	ticker *cadence.Ticker
	err    error
}

var _ cadence.EventSink = (*Recorder)(nil)

// NewRecorder returns a Recorder that stamps events with ticker's frame and
// time.
func NewRecorder(store *Store, runID int64, ticker *cadence.Ticker) *Recorder {
	return &Recorder{store: store, runID: runID, ticker: ticker}
}

// EmitEvent implements cadence.EventSink.
func (r *Recorder) EmitEvent(ev cadence.Event) {
	if r.err != nil {
		return
	}
	rec := EventRecord{Type: ev.Type.String(), ID: ev.ID}
	if r.ticker != nil {
		rec.Frame = r.ticker.FrameCount()
		rec.Time = r.ticker.Time()
	}
	r.err = r.store.AddEvent(r.runID, rec)
}

// Err returns the first storage error.
func (r *Recorder) Err() error { return r.err }
