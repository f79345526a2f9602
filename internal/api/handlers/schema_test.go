package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/sqlite"
)

func openSchemaTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(`
		CREATE TABLE departments (
			dept_no   TEXT PRIMARY KEY,
			dept_name TEXT NOT NULL
		);
		CREATE TABLE employees (
			id      INTEGER PRIMARY KEY,
			name    TEXT NOT NULL,
			dept_no TEXT REFERENCES departments(dept_no)
		);
	`); err != nil {
		t.Fatalf("seed schema failed: %v", err)
	}
	return db
}

func TestSchemaHandler_ListDatabases(t *testing.T) {
	t.Parallel()

	h := NewSchemaHandler(schema.NewInspector(openSchemaTestDB(t), "sqlite"), "main")

	rec := httptest.NewRecorder()
	h.ListDatabases(rec, authedRequest(http.MethodGet, "/api/v1/databases", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp DatabasesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Databases) == 0 || resp.Databases[0] != "main" {
		t.Errorf("expected main database, got %v", resp.Databases)
	}
}

func TestSchemaHandler_GetSchema(t *testing.T) {
	t.Parallel()

	h := NewSchemaHandler(schema.NewInspector(openSchemaTestDB(t), "sqlite"), "main")

	rec := httptest.NewRecorder()
	h.GetSchema(rec, authedRequest(http.MethodGet, "/api/v1/schema", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp SchemaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Database != "main" {
		t.Errorf("expected default database main, got %s", resp.Database)
	}
	if len(resp.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(resp.Tables))
	}

	var employees *TableResponse
	for i := range resp.Tables {
		if resp.Tables[i].Name == "employees" {
			employees = &resp.Tables[i]
		}
	}
	if employees == nil {
		t.Fatal("employees table missing from response")
	}
	if len(employees.ForeignKeys) != 1 || employees.ForeignKeys[0].RefTable != "departments" {
		t.Errorf("unexpected foreign keys: %+v", employees.ForeignKeys)
	}
	if !strings.Contains(resp.Report, "dept_no -> departments.dept_no") {
		t.Errorf("report missing relationship line:\n%s", resp.Report)
	}
}

func TestSchemaHandler_UnsupportedDialect(t *testing.T) {
	t.Parallel()

	h := NewSchemaHandler(schema.NewInspector(openSchemaTestDB(t), "oracle"), "main")

	rec := httptest.NewRecorder()
	h.ListDatabases(rec, authedRequest(http.MethodGet, "/api/v1/databases", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}
