// Package audit records what sqlpilot did: every query executed by the tool
// (query_history) and every protected HTTP request (audit_event). Both tables
// are append-only; there is no update or delete path.
package audit

import "time"

// Outcome is the recorded result of an action.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// HistoryEntry is one recorded tool invocation.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Query      string    `json:"query"`
	Outcome    string    `json:"outcome"` // "success" | "error" (matches the envelope)
	Message    string    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	RowCount   int       `json:"rowCount"`
	DurationMS int64     `json:"durationMs"`
	ActorID    string    `json:"actorId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RequestEvent is one recorded protected HTTP request.
type RequestEvent struct {
	ID         string
	ActorID    string
	Action     string
	Method     string
	Path       string
	StatusCode int
	DurationMS int64
	Outcome    Outcome
	CreatedAt  time.Time
}
