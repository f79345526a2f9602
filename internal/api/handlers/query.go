// HTTP handler for free-text SQL execution.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
)

// QueryHandler handles POST /api/v1/query.
type QueryHandler struct {
	executor *query.Executor
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(executor *query.Executor) *QueryHandler {
	return &QueryHandler{executor: executor}
}

// QueryRequest is the request body for POST /api/v1/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// Execute handles POST /api/v1/query. The response is always the query
// envelope with HTTP 200; SQL failures are reported in the envelope's error
// field, not as HTTP errors.
func (h *QueryHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	actorID, err := getUserID(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "missing identity")
		return
	}

	env := h.executor.ExecuteAs(r.Context(), req.Query, actorID)
	writeJSON(w, http.StatusOK, env)
}
