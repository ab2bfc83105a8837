// Package store handles SQLite persistence of trigger events and speed
// samples for later review. Session turn history is deliberately not
// persisted.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/muse/internal/domain"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for behavioral history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trigger_events (
			id TEXT PRIMARY KEY,
			rule_name TEXT NOT NULL,
			writing_mode TEXT NOT NULL,
			fired_at TEXT NOT NULL,
			wpm REAL NOT NULL,
			pause_seconds REAL NOT NULL,
			deletion_ratio REAL NOT NULL,
			total_words INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS wpm_samples (
			taken_at TEXT NOT NULL,
			wpm REAL NOT NULL,
			total_words INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_trigger_events_fired_at ON trigger_events(fired_at);`,
		`CREATE INDEX IF NOT EXISTS idx_wpm_samples_taken_at ON wpm_samples(taken_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrigger stores one fired trigger event. Satisfies the
// scheduler's event sink.
func (s *Store) RecordTrigger(event domain.TriggerEvent) error {
	_, err := s.db.Exec(
		`INSERT INTO trigger_events
		 (id, rule_name, writing_mode, fired_at, wpm, pause_seconds, deletion_ratio, total_words)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.RuleName,
		event.WritingMode,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.Metrics.WordsPerMinute,
		event.Metrics.PauseDurationSeconds,
		event.Metrics.DeletionRatio,
		event.Metrics.TotalWords,
	)
	return err
}

// RecordSample stores one periodic speed reading.
func (s *Store) RecordSample(at time.Time, wpm float64, totalWords int) error {
	_, err := s.db.Exec(
		`INSERT INTO wpm_samples (taken_at, wpm, total_words) VALUES (?, ?, ?)`,
		at.UTC().Format(time.RFC3339Nano), wpm, totalWords,
	)
	return err
}

// EventRecord is a stored trigger firing, reduced to the fields kept
// at rest.
type EventRecord struct {
	ID            string
	RuleName      string
	WritingMode   string
	FiredAt       time.Time
	WPM           float64
	PauseSeconds  float64
	DeletionRatio float64
	TotalWords    int
}

// RecentEvents returns the most recent trigger events, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]EventRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rule_name, writing_mode, fired_at, wpm, pause_seconds, deletion_ratio, total_words
		 FROM trigger_events ORDER BY fired_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var rec EventRecord
		var firedAt string
		if err := rows.Scan(&rec.ID, &rec.RuleName, &rec.WritingMode, &firedAt,
			&rec.WPM, &rec.PauseSeconds, &rec.DeletionRatio, &rec.TotalWords); err != nil {
			return nil, err
		}
		rec.FiredAt, err = time.Parse(time.RFC3339Nano, firedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Summary aggregates stored history for the stats command.
type Summary struct {
	SampleCount  int
	AvgWPM       float64
	PeakWPM      float64
	TriggerCount int
	ByRule       map[string]int
}

// Summarize aggregates samples and events recorded after since.
func (s *Store) Summarize(ctx context.Context, since time.Time) (Summary, error) {
	cutoff := since.UTC().Format(time.RFC3339Nano)
	summary := Summary{ByRule: make(map[string]int)}

	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(wpm), 0), COALESCE(MAX(wpm), 0)
		 FROM wpm_samples WHERE taken_at >= ?`, cutoff)
	if err := row.Scan(&summary.SampleCount, &summary.AvgWPM, &summary.PeakWPM); err != nil {
		return Summary{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rule_name, COUNT(*) FROM trigger_events
		 WHERE fired_at >= ? GROUP BY rule_name`, cutoff)
	if err != nil {
		return Summary{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var rule string
		var count int
		if err := rows.Scan(&rule, &count); err != nil {
			return Summary{}, err
		}
		summary.ByRule[rule] = count
		summary.TriggerCount += count
	}
	return summary, rows.Err()
}
