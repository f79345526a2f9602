package audit

import (
	"context"
	"log/slog"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/eventbus"
)

// Recorder consumes query.ExecutionEvent from the bus and persists each one
// as a history entry, keeping store writes off the request path.
type Recorder struct {
	service *Service
	log     *slog.Logger
}

// NewRecorder creates a Recorder writing through service.
func NewRecorder(service *Service, log *slog.Logger) *Recorder {
	return &Recorder{service: service, log: log}
}

// Start subscribes to eventbus.TopicQueryExecuted and consumes until ctx is
// cancelled. Run it in its own goroutine.
func (r *Recorder) Start(ctx context.Context, bus eventbus.EventBus) {
	ch := bus.Subscribe(eventbus.TopicQueryExecuted)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			exec, valid := evt.Payload.(query.ExecutionEvent)
			if !valid {
				continue
			}
			entry := HistoryEntry{
				Query:      exec.Query,
				Outcome:    exec.Outcome,
				Message:    exec.Message,
				Error:      exec.Error,
				RowCount:   exec.RowCount,
				DurationMS: exec.Duration.Milliseconds(),
				ActorID:    exec.ActorID,
				CreatedAt:  exec.At,
			}
			if err := r.service.RecordHistory(ctx, entry); err != nil && r.log != nil {
				r.log.Error("audit: failed to record history entry", "error", err)
			}
		}
	}
}
