package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/matiasleandrokruk/sqlpilot/internal/infra/sqlite"
)

func mustOpenDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB(:memory:) error = %v", err)
	}
	// In-memory databases are per-connection; keep a single connection so all
	// statements in a test see the same database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewDB_InMemory(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping error = %v", err)
	}
}

func TestNewDB_FileCreated(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "store.db")
	db, err := sqlite.NewDB(path)
	if err != nil {
		t.Fatalf("NewDB(%q) error = %v", path, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Ping(); err != nil {
		t.Fatalf("Ping error = %v", err)
	}
}

func TestNewDB_MissingParentDirectory(t *testing.T) {
	t.Parallel()

	_, err := sqlite.NewDB("/nonexistent-parent-dir/store.db")
	if err == nil {
		t.Fatal("NewDB with missing parent dir should fail")
	}
}

func TestNewDB_ForeignKeysEnabled(t *testing.T) {
	t.Parallel()

	db := mustOpenDB(t)

	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys error = %v", err)
	}
	if fk != 1 {
		t.Errorf("foreign_keys = %d, want 1", fk)
	}
}
