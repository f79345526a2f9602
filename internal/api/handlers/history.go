// HTTP handler for the query history.
package handlers

import (
	"net/http"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/audit"
)

// HistoryHandler handles GET /api/v1/history.
type HistoryHandler struct {
	audit *audit.Service
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(auditService *audit.Service) *HistoryHandler {
	return &HistoryHandler{audit: auditService}
}

// HistoryResponse is the response body for GET /api/v1/history.
type HistoryResponse struct {
	Data []audit.HistoryEntry `json:"data"`
	Meta Meta                 `json:"meta"`
}

// Meta contains pagination metadata.
type Meta struct {
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// List handles GET /api/v1/history?limit=&offset=. Entries are returned
// newest first.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePaginationParams(r)

	entries, err := h.audit.ListHistory(r.Context(), p.Limit, p.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if entries == nil {
		entries = []audit.HistoryEntry{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Data: entries,
		Meta: Meta{Count: len(entries), Limit: p.Limit, Offset: p.Offset},
	})
}
