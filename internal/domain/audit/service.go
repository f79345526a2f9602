package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service writes and reads the append-only store tables.
type Service struct {
	db *sql.DB
}

// NewService creates an audit service over the local store handle.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// RecordHistory appends one tool invocation to query_history.
// The entry ID and timestamp are filled in when zero.
func (s *Service) RecordHistory(ctx context.Context, entry HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = newID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history (
			id, query, outcome, message, error, row_count, duration_ms, actor_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.Query,
		entry.Outcome,
		nullable(entry.Message),
		nullable(entry.Error),
		entry.RowCount,
		entry.DurationMS,
		nullable(entry.ActorID),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: record history: %w", err)
	}
	return nil
}

// ListHistory returns recent history entries, newest first.
func (s *Service) ListHistory(ctx context.Context, limit, offset int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 25
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, query, outcome, message, error, row_count, duration_ms, actor_id, created_at
		FROM query_history
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("audit: list history: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			entry   HistoryEntry
			message sql.NullString
			errText sql.NullString
			actor   sql.NullString
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Query,
			&entry.Outcome,
			&message,
			&errText,
			&entry.RowCount,
			&entry.DurationMS,
			&actor,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("audit: scan history: %w", err)
		}
		entry.Message = message.String
		entry.Error = errText.String
		entry.ActorID = actor.String
		out = append(out, entry)
	}
	return out, rows.Err()
}

// RecordRequest appends one protected HTTP request to audit_event.
func (s *Service) RecordRequest(ctx context.Context, evt RequestEvent) error {
	if evt.ID == "" {
		evt.ID = newID()
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_event (
			id, actor_id, action, method, path, status_code, duration_ms, outcome, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		evt.ID,
		evt.ActorID,
		evt.Action,
		evt.Method,
		evt.Path,
		evt.StatusCode,
		evt.DurationMS,
		string(evt.Outcome),
		evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("audit: record request: %w", err)
	}
	return nil
}

// newID returns a time-sortable UUID v7, falling back to v4 when the clock
// misbehaves.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
