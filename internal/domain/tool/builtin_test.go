package tool

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/sqlite"
)

func openToolTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB failed: %v", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
		CREATE TABLE departments (
			dept_no   TEXT PRIMARY KEY,
			dept_name TEXT NOT NULL
		);
		CREATE TABLE employees (
			id      INTEGER PRIMARY KEY,
			name    TEXT NOT NULL,
			dept_no TEXT REFERENCES departments(dept_no)
		);
		INSERT INTO departments (dept_no, dept_name) VALUES ('d001', 'Engineering');
		INSERT INTO employees (id, name, dept_no) VALUES (1, 'Alice', 'd001');
	`)
	if err != nil {
		t.Fatalf("seed schema failed: %v", err)
	}
	return db
}

func builtinRegistry(t *testing.T, db *sql.DB) *Registry {
	t.Helper()
	reg := NewRegistry()
	executor := query.NewExecutor(db, time.Second)
	inspector := schema.NewInspector(db, "sqlite")
	if err := RegisterBuiltins(reg, executor, inspector, "main"); err != nil {
		t.Fatalf("RegisterBuiltins failed: %v", err)
	}
	return reg
}

func TestRegisterBuiltins_RegistersAllThree(t *testing.T) {
	t.Parallel()

	reg := builtinRegistry(t, openToolTestDB(t))

	defs := reg.Definitions()
	if len(defs) != 3 {
		t.Fatalf("expected 3 builtin tools, got %d", len(defs))
	}
	for i, want := range []string{NameQueryExecutor, NameListDatabases, NameDescribeSchema} {
		if defs[i].Name != want {
			t.Errorf("definition %d: expected %s, got %s", i, want, defs[i].Name)
		}
	}
}

func TestQueryExecutorTool_ReturnsEnvelope(t *testing.T) {
	t.Parallel()

	reg := builtinRegistry(t, openToolTestDB(t))

	out, err := reg.Call(context.Background(), NameQueryExecutor,
		json.RawMessage(`{"query": "SELECT name FROM employees ORDER BY id"}`))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	var env query.Envelope
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Error != "" {
		t.Fatalf("unexpected error: %s", env.Error)
	}
	if len(env.Results) != 1 || env.Results[0]["name"] != "Alice" {
		t.Errorf("unexpected results: %v", env.Results)
	}
}

func TestQueryExecutorTool_SQLErrorStaysInEnvelope(t *testing.T) {
	t.Parallel()

	reg := builtinRegistry(t, openToolTestDB(t))

	out, err := reg.Call(context.Background(), NameQueryExecutor,
		json.RawMessage(`{"query": "SELCT 1"}`))
	if err != nil {
		t.Fatalf("execution failures must stay in the envelope, got %v", err)
	}

	var env query.Envelope
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Error == "" {
		t.Error("expected error field to be populated")
	}
}

func TestQueryExecutorTool_MissingQueryRejected(t *testing.T) {
	t.Parallel()

	reg := builtinRegistry(t, openToolTestDB(t))

	if _, err := reg.Call(context.Background(), NameQueryExecutor, json.RawMessage(`{}`)); err == nil {
		t.Error("expected validation error for missing query field")
	}
}

func TestListDatabasesTool(t *testing.T) {
	t.Parallel()

	reg := builtinRegistry(t, openToolTestDB(t))

	out, err := reg.Call(context.Background(), NameListDatabases, nil)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	var resp struct {
		Databases []string `json:"databases"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Databases) == 0 || resp.Databases[0] != "main" {
		t.Errorf("expected main database listed, got %v", resp.Databases)
	}
}

func TestDescribeSchemaTool_RendersReport(t *testing.T) {
	t.Parallel()

	reg := builtinRegistry(t, openToolTestDB(t))

	out, err := reg.Call(context.Background(), NameDescribeSchema, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}

	var resp struct {
		Database string `json:"database"`
		Report   string `json:"report"`
	}
	if err := json.Unmarshal(out, &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Database != "main" {
		t.Errorf("expected default database main, got %s", resp.Database)
	}
	if !strings.Contains(resp.Report, "employees") || !strings.Contains(resp.Report, "dept_no -> departments.dept_no") {
		t.Errorf("report missing table or relationship lines:\n%s", resp.Report)
	}
}
