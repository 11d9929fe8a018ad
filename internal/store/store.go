// Package store keeps privacy-conscious visitor metrics and a log of contact
// form submissions in SQLite.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored. Fixed-width UTC keeps string
// comparison in SQL equal to time ordering.
const timeLayout = "2006-01-02 15:04:05"

// Visitor is one tracked page view. The client IP is never stored, only a
// salted hash of it.
type Visitor struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// PathStat counts views of one path.
type PathStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// ContactRecord is one logged contact form submission and how it ended.
type ContactRecord struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats aggregates what the admin dashboard shows.
type Stats struct {
	TotalVisitors    int64      `json:"total_visitors"`
	UniqueVisitors   int64      `json:"unique_visitors"`
	VisitorsToday    int64      `json:"visitors_today"`
	VisitorsThisWeek int64      `json:"visitors_this_week"`
	TotalMessages    int64      `json:"total_messages"`
	MessagesSent     int64      `json:"messages_sent"`
	TopPaths         []PathStat `json:"top_paths"`
	RecentVisitors   []Visitor  `json:"recent_visitors"`
}

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	salt string
	now  func() time.Time
}

// Open opens (or creates) the SQLite database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path, salt string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite serializes writers anyway, and an in-memory database exists
	// per connection.
	db.SetMaxOpenConns(1)

	s := New(db, salt)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already opened database.
func New(db *sql.DB, salt string) *Store {
	return &Store{db: db, salt: salt, now: time.Now}
}

// Migrate creates the tables and indexes if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,
			user_agent TEXT,
			path TEXT,
			timestamp TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp)`,
		`CREATE TABLE IF NOT EXISTS contact_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			message TEXT NOT NULL,
			outcome TEXT NOT NULL,
			detail TEXT,
			created_at TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// HashIP returns the salted, truncated hash stored in place of an IP.
func (s *Store) HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip + s.salt))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *Store) stamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseStamp(v string) time.Time {
	t, err := time.ParseInLocation(timeLayout, v, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// RecordVisit stores one page view.
func (s *Store) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, timestamp) VALUES (?, ?, ?, ?)`,
		s.HashIP(ip), userAgent, path, s.stamp(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}
	return nil
}

// RecordContact logs a contact form submission with its outcome.
func (s *Store) RecordContact(ctx context.Context, rec ContactRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_messages (name, email, message, outcome, detail, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.Email, rec.Message, rec.Outcome, rec.Detail, s.stamp(s.now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record contact message: %w", err)
	}
	return nil
}

// CleanupVisits deletes visits older than maxAge and reports how many went.
func (s *Store) CleanupVisits(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM visitors WHERE timestamp < ?`,
		s.stamp(s.now().Add(-maxAge)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Stats gathers the admin dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	week := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{s.stamp(today)}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{s.stamp(week)}},
		{&stats.TotalMessages, `SELECT COUNT(*) FROM contact_messages`, nil},
		{&stats.MessagesSent, `SELECT COUNT(*) FROM contact_messages WHERE outcome = 'sent'`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to load stats: %w", err)
		}
	}

	top, err := s.TopPaths(ctx, 10)
	if err != nil {
		return nil, err
	}
	stats.TopPaths = top

	recent, err := s.RecentVisitors(ctx, 50)
	if err != nil {
		return nil, err
	}
	stats.RecentVisitors = recent

	return stats, nil
}

// TopPaths returns the most viewed paths.
func (s *Store) TopPaths(ctx context.Context, limit int) ([]PathStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, COUNT(*) AS views FROM visitors GROUP BY path ORDER BY views DESC, path ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load top paths: %w", err)
	}
	defer rows.Close()

	var out []PathStat
	for rows.Next() {
		var p PathStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecentVisitors returns the latest visits, newest first.
func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]Visitor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load visitors: %w", err)
	}
	defer rows.Close()

	var out []Visitor
	for rows.Next() {
		var v Visitor
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			continue
		}
		v.Timestamp = parseStamp(ts)
		out = append(out, v)
	}
	return out, rows.Err()
}

// ContactMessages returns the latest logged submissions, newest first.
func (s *Store) ContactMessages(ctx context.Context, limit int) ([]ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, message, outcome, COALESCE(detail, ''), created_at
		FROM contact_messages ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load contact messages: %w", err)
	}
	defer rows.Close()

	var out []ContactRecord
	for rows.Next() {
		var r ContactRecord
		var ts string
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Message, &r.Outcome, &r.Detail, &ts); err != nil {
			continue
		}
		r.CreatedAt = parseStamp(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
