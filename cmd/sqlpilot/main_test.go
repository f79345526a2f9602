package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/sqlpilot/internal/infra/sqlite"
)

func seed(t *testing.T, path string) {
	t.Helper()
	db, err := sqlite.NewDB(path)
	if err != nil {
		t.Fatalf("sqlite.NewDB failed: %v", err)
	}
	defer db.Close() //nolint:errcheck
	if _, err := db.Exec(`CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`); err != nil {
		t.Fatalf("seed target: %v", err)
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	code := run([]string{"--version"}, &out, strings.NewReader(""))

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "sqlpilot version") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

func TestRun_Help_PrintsUsage(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	code := run([]string{"--help"}, &out, strings.NewReader(""))

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected help output, got %q", out.String())
	}
	for _, cmd := range []string{"serve", "chat", "mcp", "schema"} {
		if !strings.Contains(out.String(), cmd) {
			t.Errorf("help missing command %q", cmd)
		}
	}
}

func TestRun_NoArgs_PrintsUsage(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	code := run([]string{}, &out, strings.NewReader(""))

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected help output, got %q", out.String())
	}
}

func TestRun_InvalidFlag_Returns2(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	code := run([]string{"--unknown-flag"}, &out, strings.NewReader(""))

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
}

func TestRun_UnknownCommand_Returns2(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	code := run([]string{"bogus"}, &out, strings.NewReader(""))

	if code != 2 {
		t.Fatalf("expected exit code 2, got %d", code)
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Fatalf("expected unknown command message, got %q", out.String())
	}
}

func TestRun_SchemaAgainstSQLiteStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SQLPILOT_DB_DIALECT", "sqlite")
	t.Setenv("SQLPILOT_DB_NAME", dir+"/target.db")

	// Seed a target database so the report has content.
	seed(t, dir+"/target.db")

	var out bytes.Buffer
	code := run([]string{"schema"}, &out, strings.NewReader(""))

	if code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, out.String())
	}
	if !strings.Contains(out.String(), "employees") {
		t.Fatalf("expected schema report to mention employees, got %q", out.String())
	}
}
