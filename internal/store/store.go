// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/keycamp/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for progress and attempt history.
type Store struct {
	db  *sql.DB
	now func() time.Time
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
	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
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
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			chapter_id INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			text_length INTEGER NOT NULL,
			words INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			stars INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_key_stats (
			attempt_id TEXT NOT NULL,
			key TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (attempt_id, key)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_ended_at ON attempts(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_chapter ON attempts(chapter_id);`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_key_stats_key ON attempt_key_stats(key);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get reads a value from the key-value table.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set writes a value to the key-value table, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, s.now().Format(time.RFC3339Nano))
	return err
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// InsertAttempt stores a completed attempt and its per-key stats. An empty
// attempt id is replaced by a new UUID, which is returned.
func (s *Store) InsertAttempt(ctx context.Context, attempt model.Attempt, keys []model.KeyStats) (id string, err error) {
	id = attempt.ID
	if id == "" {
		id = uuid.New().String()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, chapter_id, started_at, ended_at, text_length, words, correct, errors, wpm, accuracy, stars, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		attempt.ChapterID,
		attempt.StartedAt.Format(time.RFC3339Nano),
		attempt.EndedAt.Format(time.RFC3339Nano),
		attempt.TextLength,
		attempt.Words,
		attempt.Correct,
		attempt.Errors,
		attempt.WPM,
		attempt.Accuracy,
		attempt.Stars,
		attempt.DurationMs,
	)
	if err != nil {
		return "", err
	}

	if len(keys) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO attempt_key_stats (attempt_id, key, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ks := range keys {
			if _, err = stmt.ExecContext(ctx, id, ks.Key, ks.Correct, ks.Incorrect, ks.LatencySumMs, ks.LatencyCount); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListAttempts returns attempt aggregates filtered by stats config, oldest first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.ChapterID > 0 {
		clauses = append(clauses, "chapter_id = ?")
		args = append(args, cfg.ChapterID)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, chapter_id, ended_at, wpm, accuracy, stars, errors
		FROM attempts
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var endedAt string
		if err := rows.Scan(&agg.AttemptID, &agg.ChapterID, &endedAt, &agg.WPM, &agg.Accuracy, &agg.Stars, &agg.Errors); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if cfg.Last > 0 && len(attempts) > cfg.Last {
		attempts = attempts[len(attempts)-cfg.Last:]
	}
	return attempts, nil
}

// KeyAggregates aggregates key stats over the most recent attempts.
func (s *Store) KeyAggregates(ctx context.Context, window, chapterID int) ([]model.KeyAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_attempts AS (
		SELECT id FROM attempts
		WHERE (? = 0 OR chapter_id = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ks.key, SUM(ks.correct) AS correct, SUM(ks.incorrect) AS incorrect,
		SUM(ks.latency_sum_ms) AS latency_sum_ms, SUM(ks.latency_count) AS latency_count
	FROM attempt_key_stats ks
	JOIN recent_attempts r ON r.id = ks.attempt_id
	GROUP BY ks.key`
	return s.queryKeyAggregates(ctx, query, chapterID, chapterID, window)
}

// KeyAggregatesForAttempts aggregates per-key stats across attempts.
func (s *Store) KeyAggregatesForAttempts(ctx context.Context, attemptIDs []string) ([]model.KeyAggregate, error) {
	if len(attemptIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(attemptIDs))
	args := make([]any, len(attemptIDs))
	for i, id := range attemptIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT key, SUM(correct) AS correct, SUM(incorrect) AS incorrect,
		SUM(latency_sum_ms) AS latency_sum_ms, SUM(latency_count) AS latency_count
		FROM attempt_key_stats
		WHERE attempt_id IN (%s)
		GROUP BY key`, strings.Join(placeholders, ","))
	return s.queryKeyAggregates(ctx, query, args...)
}

// DeleteAttempts removes all attempt history.
func (s *Store) DeleteAttempts(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, stmt := range []string{`DELETE FROM attempt_key_stats`, `DELETE FROM attempts`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) queryKeyAggregates(ctx context.Context, query string, args ...any) ([]model.KeyAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.KeyAggregate
	for rows.Next() {
		var agg model.KeyAggregate
		if err := rows.Scan(&agg.Key, &agg.Correct, &agg.Incorrect, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
