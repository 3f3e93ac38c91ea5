package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// HistoryDB handles database operations
type HistoryDB struct {
	db *sql.DB
}

var _ Recorder = (*HistoryDB)(nil)

// NewHistoryDB creates/opens the history database, creating its directory
// if needed.
func NewHistoryDB(path string) (*HistoryDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	hdb := &HistoryDB{db: db}
	if err := hdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return hdb, nil
}

func (h *HistoryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		kind TEXT NOT NULL,
		template TEXT,
		duration_ms INTEGER,
		success BOOLEAN,
		directives INTEGER DEFAULT 0,
		diagnostics INTEGER DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_events_time ON events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_template ON events(template);
	`

	_, err := h.db.Exec(schema)
	return err
}

// Record saves an event, filling in a missing ID or timestamp.
func (h *HistoryDB) Record(e Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	query := `
	INSERT OR REPLACE INTO events (
		id, timestamp, kind, template, duration_ms, success,
		directives, diagnostics, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.Exec(query,
		e.ID, e.Timestamp.UTC(), string(e.Kind), e.Template, e.Duration.Milliseconds(),
		e.Success, e.Directives, e.Diagnostics, e.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// Recent returns up to limit events, newest first.
func (h *HistoryDB) Recent(limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.Query(`
		SELECT id, timestamp, kind, template, duration_ms, success, directives, diagnostics, error
		FROM events ORDER BY timestamp DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// Stats summarises the last days days of events.
func (h *HistoryDB) Stats(days int) (Stats, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().AddDate(0, 0, -days).UTC()
	stats := Stats{Period: fmt.Sprintf("last %d days", days)}

	err := h.db.QueryRow(`
		SELECT COUNT(*) FROM events WHERE kind = 'run' AND timestamp >= ?
	`, since).Scan(&stats.TotalRuns)
	if err != nil {
		return stats, err
	}

	var succeeded int
	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM events WHERE kind = 'run' AND success = 1 AND timestamp >= ?
	`, since).Scan(&succeeded)
	if err != nil {
		return stats, err
	}
	if stats.TotalRuns > 0 {
		stats.SuccessRate = float64(succeeded) / float64(stats.TotalRuns) * 100
	}

	var avgDuration sql.NullFloat64
	var diagnostics sql.NullInt64
	err = h.db.QueryRow(`
		SELECT AVG(duration_ms), SUM(diagnostics) FROM events WHERE kind = 'run' AND timestamp >= ?
	`, since).Scan(&avgDuration, &diagnostics)
	if err != nil {
		return stats, err
	}
	if avgDuration.Valid {
		stats.AvgDuration = time.Duration(avgDuration.Float64) * time.Millisecond
	}
	if diagnostics.Valid {
		stats.Diagnostics = int(diagnostics.Int64)
	}

	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM events WHERE kind = 'install' AND success = 1 AND timestamp >= ?
	`, since).Scan(&stats.Installs)
	if err != nil {
		return stats, err
	}

	err = h.db.QueryRow(`
		SELECT COUNT(*) FROM events WHERE kind = 'remove' AND success = 1 AND timestamp >= ?
	`, since).Scan(&stats.Removals)
	if err != nil {
		return stats, err
	}

	stats.TopTemplates, err = h.getTopTemplates(since)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func (h *HistoryDB) getTopTemplates(since time.Time) ([]TemplateStat, error) {
	query := `
		SELECT template, COUNT(*) as count
		FROM events WHERE kind = 'run' AND template != '' AND timestamp >= ?
		GROUP BY template ORDER BY count DESC, template ASC LIMIT 5
	`

	rows, err := h.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []TemplateStat
	for rows.Next() {
		var ts TemplateStat
		if err := rows.Scan(&ts.Name, &ts.Count); err != nil {
			return nil, err
		}
		templates = append(templates, ts)
	}

	return templates, rows.Err()
}

// DeleteOlderThan removes events older than the specified duration
func (h *HistoryDB) DeleteOlderThan(age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age).UTC()
	res, err := h.db.Exec(`DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		var template, errText sql.NullString
		var durationMs sql.NullInt64

		err := rows.Scan(
			&e.ID, &e.Timestamp, &kind, &template, &durationMs,
			&e.Success, &e.Directives, &e.Diagnostics, &errText,
		)
		if err != nil {
			return nil, err
		}

		e.Kind = Kind(kind)
		e.Template = template.String
		e.Error = errText.String
		if durationMs.Valid {
			e.Duration = time.Duration(durationMs.Int64) * time.Millisecond
		}

		events = append(events, e)
	}
	return events, rows.Err()
}
