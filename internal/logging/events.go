package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-event
// LogEvent writes an entry to the run_events table.
func LogEvent(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO run_events (run_id, event_type, detail_json, reason, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.EventType,
		nullIfEmpty(entry.DetailJSON),
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log event: %w", err)
	}
	return nil
}

// #endregion log-event

// #region list-events
// ListEvents returns the events for one run in insertion order.
func ListEvents(db *sql.DB, runID string) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT run_id, event_type, detail_json, reason, created_at
		 FROM run_events WHERE run_id = ? ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list events %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var detail, reason sql.NullString
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.EventType, &detail, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if detail.Valid {
			e.DetailJSON = detail.String
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion list-events

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
