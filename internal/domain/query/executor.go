package query

import (
	"context"
	"database/sql"
	"time"

	"github.com/matiasleandrokruk/sqlpilot/internal/infra/eventbus"
)

// SuccessMessage is returned for statements that execute without producing rows.
const SuccessMessage = "Query executed successfully."

// Row is a single result row keyed by column name.
type Row map[string]any

// Envelope is the response returned to the caller. Exactly one of Results,
// Message, or Error is populated:
//   - Results (with Columns) when the statement produced a result set
//   - Message when it executed without producing rows
//   - Error when execution failed for any reason
//
// Failures are never raised to the caller as Go errors; callers must check
// the Error field.
type Envelope struct {
	Query   string   `json:"query"`
	Columns []string `json:"columns,omitempty"`
	Results []Row    `json:"results,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// ExecutionEvent is published on eventbus.TopicQueryExecuted after every
// invocation, success or failure.
type ExecutionEvent struct {
	Query    string
	Outcome  string // "success" | "error"
	Message  string
	Error    string
	RowCount int
	Duration time.Duration
	ActorID  string
	At       time.Time
}

// Executor runs free-text SQL against the target database and shapes the
// response envelope.
type Executor struct {
	db         *sql.DB
	normalizer Normalizer
	bus        eventbus.EventBus
	timeout    time.Duration
}

// NewExecutor creates an Executor with the default normalization chain and no
// event publication.
func NewExecutor(db *sql.DB, timeout time.Duration) *Executor {
	return NewExecutorWithBus(db, timeout, nil)
}

// NewExecutorWithBus creates an Executor that publishes an ExecutionEvent on
// the bus after every invocation.
func NewExecutorWithBus(db *sql.DB, timeout time.Duration, bus eventbus.EventBus) *Executor {
	return &Executor{
		db:         db,
		normalizer: DefaultNormalizer(),
		bus:        bus,
		timeout:    timeout,
	}
}

// WithNormalizer replaces the normalization step. Returns the receiver for
// construction-time chaining.
func (e *Executor) WithNormalizer(n Normalizer) *Executor {
	if n != nil {
		e.normalizer = n
	}
	return e
}

// Execute normalizes the query text, runs it on a scoped connection, and
// returns the envelope. The connection is released on every exit path.
func (e *Executor) Execute(ctx context.Context, rawQuery string) Envelope {
	started := time.Now()
	normalized := e.normalizer.Normalize(rawQuery)

	env := e.run(ctx, normalized)
	e.publish(env, time.Since(started))
	return env
}

// ExecuteAs is Execute with an actor identity attached to the published event.
func (e *Executor) ExecuteAs(ctx context.Context, rawQuery, actorID string) Envelope {
	started := time.Now()
	normalized := e.normalizer.Normalize(rawQuery)

	env := e.run(ctx, normalized)
	evt := eventFromEnvelope(env, time.Since(started))
	evt.ActorID = actorID
	e.publishEvent(evt)
	return env
}

func (e *Executor) run(ctx context.Context, query string) Envelope {
	env := Envelope{Query: query}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	// Dedicated connection per invocation, released on every exit path.
	conn, err := e.db.Conn(ctx)
	if err != nil {
		env.Error = err.Error()
		return env
	}
	defer conn.Close() //nolint:errcheck

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		env.Error = err.Error()
		return env
	}
	defer rows.Close() //nolint:errcheck

	columns, err := rows.Columns()
	if err != nil {
		env.Error = err.Error()
		return env
	}

	// A statement produced a result set iff the driver reports columns.
	// INSERT/UPDATE/DELETE come back with an empty column list.
	if len(columns) == 0 {
		env.Message = SuccessMessage
		return env
	}

	results, err := scanAll(rows, columns)
	if err != nil {
		return Envelope{Query: query, Error: err.Error()}
	}

	env.Columns = columns
	env.Results = results
	return env
}

// scanAll fetches every row as a column-keyed map. []byte values are converted
// to string so envelopes marshal as text rather than base64.
func scanAll(rows *sql.Rows, columns []string) ([]Row, error) {
	results := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Executor) publish(env Envelope, duration time.Duration) {
	e.publishEvent(eventFromEnvelope(env, duration))
}

func (e *Executor) publishEvent(evt ExecutionEvent) {
	if e.bus == nil {
		return
	}
	e.bus.Publish(eventbus.TopicQueryExecuted, evt)
}

func eventFromEnvelope(env Envelope, duration time.Duration) ExecutionEvent {
	evt := ExecutionEvent{
		Query:    env.Query,
		Outcome:  "success",
		Message:  env.Message,
		Error:    env.Error,
		RowCount: len(env.Results),
		Duration: duration,
		At:       time.Now().UTC(),
	}
	if env.Error != "" {
		evt.Outcome = "error"
	}
	return evt
}
