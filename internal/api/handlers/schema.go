// HTTP handlers for database and schema introspection.
package handlers

import (
	"net/http"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
)

// SchemaHandler handles GET /api/v1/databases and GET /api/v1/schema.
type SchemaHandler struct {
	inspector       *schema.Inspector
	defaultDatabase string
}

// NewSchemaHandler creates a new SchemaHandler. defaultDatabase is used when
// the schema request does not name one.
func NewSchemaHandler(inspector *schema.Inspector, defaultDatabase string) *SchemaHandler {
	return &SchemaHandler{inspector: inspector, defaultDatabase: defaultDatabase}
}

// DatabasesResponse is the response body for GET /api/v1/databases.
type DatabasesResponse struct {
	Databases []string `json:"databases"`
}

// TableResponse is one table in the schema response.
type TableResponse struct {
	Name        string               `json:"name"`
	Columns     []string             `json:"columns"`
	ForeignKeys []ForeignKeyResponse `json:"foreignKeys,omitempty"`
}

// ForeignKeyResponse is one relationship in the schema response.
type ForeignKeyResponse struct {
	Column    string `json:"column"`
	RefTable  string `json:"refTable"`
	RefColumn string `json:"refColumn"`
}

// SchemaResponse is the response body for GET /api/v1/schema.
type SchemaResponse struct {
	Database string          `json:"database"`
	Tables   []TableResponse `json:"tables"`
	Report   string          `json:"report"`
}

// ListDatabases handles GET /api/v1/databases.
func (h *SchemaHandler) ListDatabases(w http.ResponseWriter, r *http.Request) {
	names, err := h.inspector.ListDatabases(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list databases")
		return
	}
	writeJSON(w, http.StatusOK, DatabasesResponse{Databases: names})
}

// GetSchema handles GET /api/v1/schema?database=<name>.
func (h *SchemaHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	database := r.URL.Query().Get("database")
	if database == "" {
		database = h.defaultDatabase
	}

	tables, err := h.inspector.Tables(r.Context(), database)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to introspect schema")
		return
	}

	resp := SchemaResponse{
		Database: database,
		Tables:   make([]TableResponse, 0, len(tables)),
		Report:   schema.Report(database, tables),
	}
	for _, t := range tables {
		tr := TableResponse{Name: t.Name, Columns: t.Columns}
		for _, fk := range t.ForeignKeys {
			tr.ForeignKeys = append(tr.ForeignKeys, ForeignKeyResponse{
				Column:    fk.Column,
				RefTable:  fk.RefTable,
				RefColumn: fk.RefColumn,
			})
		}
		resp.Tables = append(resp.Tables, tr)
	}

	writeJSON(w, http.StatusOK, resp)
}
