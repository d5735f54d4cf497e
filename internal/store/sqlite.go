package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/SamDev98/ats-crawler/internal/model"
)

// SQLiteStore persists sent-job records in SQLite for cross-run
// deduplication. Records are keyed by URL and only considered within the
// retention window.
type SQLiteStore struct {
	db        *sql.DB
	retention time.Duration
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the sent_jobs table and its indexes exist.
func NewSQLiteStore(dbPath string, retention time.Duration) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS sent_jobs (
			url      TEXT PRIMARY KEY,
			title    TEXT NOT NULL,
			company  TEXT NOT NULL,
			source   TEXT NOT NULL,
			score    INTEGER NOT NULL,
			location TEXT,
			sent_at  DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sent_jobs_sent_at ON sent_jobs (sent_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating sent_jobs schema: %w", err)
		}
	}

	return &SQLiteStore{db: db, retention: retention}, nil
}

// FilterNew returns the jobs whose URLs were not sent within the retention
// window, preserving input order. One batch query regardless of batch size.
func (s *SQLiteStore) FilterNew(jobs []model.Job) ([]model.Job, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(jobs))
	args := make([]any, 0, len(jobs)+1)
	for i, job := range jobs {
		placeholders[i] = "?"
		args = append(args, job.URL)
	}
	args = append(args, time.Now().Add(-s.retention))

	query := fmt.Sprintf(
		"SELECT url FROM sent_jobs WHERE url IN (%s) AND sent_at >= ?",
		strings.Join(placeholders, ","),
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying existing urls: %w", err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scanning existing url: %w", err)
		}
		existing[url] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating existing urls: %w", err)
	}

	fresh := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		if !existing[job.URL] {
			fresh = append(fresh, job)
		}
	}
	return fresh, nil
}

// MarkSent persists one record per job in a single transaction, all stamped
// with the same commit time. Callers invoke this only after confirmed
// delivery.
func (s *SQLiteStore) MarkSent(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning mark-sent tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT OR REPLACE INTO sent_jobs (url, title, company, source, score, location, sent_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("preparing mark-sent statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, job := range jobs {
		if _, err := stmt.Exec(job.URL, job.Title, job.Company, job.Source, job.Score, job.Location, now); err != nil {
			return fmt.Errorf("marking %s as sent: %w", job.URL, err)
		}
	}

	return tx.Commit()
}

// IsAlreadySent reports whether a URL was sent within the retention window.
func (s *SQLiteStore) IsAlreadySent(url string) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		"SELECT 1 FROM sent_jobs WHERE url = ? AND sent_at >= ?",
		url, time.Now().Add(-s.retention),
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking sent status for %s: %w", url, err)
	}
	return true, nil
}

// CountSentSince returns how many records carry a sent-at at or after since.
func (s *SQLiteStore) CountSentSince(since time.Time) (int64, error) {
	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM sent_jobs WHERE sent_at >= ?", since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting sent since %v: %w", since, err)
	}
	return count, nil
}

// CountTotal returns the total number of sent records, window included or not.
func (s *SQLiteStore) CountTotal() (int64, error) {
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sent_jobs").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting sent jobs: %w", err)
	}
	return count, nil
}

// RecentRecords returns up to limit records, newest first.
func (s *SQLiteStore) RecentRecords(limit int) ([]model.SentRecord, error) {
	rows, err := s.db.Query(
		"SELECT url, title, company, source, score, location, sent_at FROM sent_jobs ORDER BY sent_at DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent records: %w", err)
	}
	defer rows.Close()

	var records []model.SentRecord
	for rows.Next() {
		var r model.SentRecord
		var location sql.NullString
		if err := rows.Scan(&r.URL, &r.Title, &r.Company, &r.Source, &r.Score, &location, &r.SentAt); err != nil {
			return nil, fmt.Errorf("scanning sent record: %w", err)
		}
		r.Location = location.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// Cleanup deletes records older than the given duration.
func (s *SQLiteStore) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	_, err := s.db.Exec("DELETE FROM sent_jobs WHERE sent_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up sent jobs older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
