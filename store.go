package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// sqliteTime is the layout stored in DATETIME columns. It is what SQLite's
// own date functions produce, so datetime('now', ...) comparisons work.
const sqliteTime = "2006-01-02 15:04:05"

// Privacy-conscious visitor tracking struct
type VisitorMetric struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"` // Hashed instead of raw IP for privacy
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionRecord summarizes one live backdrop websocket session.
type SessionRecord struct {
	ID        string        `json:"id"`
	HashedIP  string        `json:"hashed_ip"`
	Preset    string        `json:"preset"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Frames    int64         `json:"frames"`
	Moves     int64         `json:"moves"`
	Clicks    int64         `json:"clicks"`
}

type AdminStats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	TotalSessions    int64           `json:"total_sessions"`
	TotalFrames      int64           `json:"total_frames"`
	TotalClicks      int64           `json:"total_clicks"`
	TopSessions      []SessionRecord `json:"top_sessions"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
}

// Store persists visitor and session data in SQLite.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite serializes writers anyway; one connection also keeps
	// ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,  -- Store hashed IP instead of raw IP
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp)`,
		`CREATE TABLE IF NOT EXISTS backdrop_sessions (
			id TEXT PRIMARY KEY,
			hashed_ip TEXT NOT NULL,
			preset TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			frames INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			clicks INTEGER NOT NULL DEFAULT 0
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) RecordVisit(ctx context.Context, hashedIP, userAgent, path string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, at.UTC().Format(sqliteTime))
	return err
}

func (s *Store) RecordSession(ctx context.Context, rec SessionRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO backdrop_sessions (id, hashed_ip, preset, started_at, duration_ms, frames, moves, clicks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.HashedIP, rec.Preset, rec.StartedAt.UTC().Format(sqliteTime),
		rec.Duration.Milliseconds(), rec.Frames, rec.Moves, rec.Clicks)
	return err
}

// DeleteSession reports whether a row was removed.
func (s *Store) DeleteSession(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM backdrop_sessions WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// CleanupVisitors removes visitor records older than 12 months.
func (s *Store) CleanupVisitors(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM visitors
		WHERE timestamp < datetime('now', '-12 months')
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (s *Store) RecentVisitors(ctx context.Context, limit int) ([]VisitorMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []VisitorMetric
	for rows.Next() {
		var v VisitorMetric
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			return nil, err
		}
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

// Sessions lists sessions, busiest first when byClicks is set, newest first
// otherwise.
func (s *Store) Sessions(ctx context.Context, limit int, byClicks bool) ([]SessionRecord, error) {
	order := "started_at DESC"
	if byClicks {
		order = "clicks DESC, frames DESC"
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, preset, started_at, duration_ms, frames, moves, clicks
		FROM backdrop_sessions
		ORDER BY `+order+`
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var durationMS int64
		if err := rows.Scan(&rec.ID, &rec.HashedIP, &rec.Preset, &rec.StartedAt,
			&durationMS, &rec.Frames, &rec.Moves, &rec.Clicks); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		sessions = append(sessions, rec)
	}
	return sessions, rows.Err()
}

// Stats gathers the admin dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM visitors", &stats.TotalVisitors},
		{"SELECT COUNT(DISTINCT hashed_ip) FROM visitors", &stats.UniqueVisitors},
		{"SELECT COUNT(*) FROM backdrop_sessions", &stats.TotalSessions},
		{"SELECT COALESCE(SUM(frames), 0) FROM backdrop_sessions", &stats.TotalFrames},
		{"SELECT COALESCE(SUM(clicks), 0) FROM backdrop_sessions", &stats.TotalClicks},
		{"SELECT COUNT(*) FROM visitors WHERE DATE(timestamp) = DATE('now')", &stats.VisitorsToday},
		{"SELECT COUNT(*) FROM visitors WHERE timestamp >= datetime('now', '-7 days')", &stats.VisitorsThisWeek},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("stats %q: %w", c.query, err)
		}
	}

	var err error
	if stats.TopSessions, err = s.Sessions(ctx, 10, true); err != nil {
		return nil, err
	}
	if stats.RecentVisitors, err = s.RecentVisitors(ctx, 50); err != nil {
		return nil, err
	}
	return stats, nil
}
