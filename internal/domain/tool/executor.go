package tool

import (
	"context"
	"encoding/json"
)

// Executor defines the runtime contract for executable tools.
type Executor interface {
	Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error)
}
