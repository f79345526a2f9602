package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainaudit "github.com/matiasleandrokruk/sqlpilot/internal/domain/audit"
	domainauth "github.com/matiasleandrokruk/sqlpilot/internal/domain/auth"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
	"github.com/matiasleandrokruk/sqlpilot/internal/infra/sqlite"
	pkgauth "github.com/matiasleandrokruk/sqlpilot/pkg/auth"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("SQLPILOT_JWT_SECRET", "test-secret")

	target, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB failed: %v", err)
	}
	target.SetMaxOpenConns(1)
	target.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = target.Close() })
	if _, err := target.Exec(`
		CREATE TABLE employees (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
		INSERT INTO employees (id, name) VALUES (1, 'Alice');
	`); err != nil {
		t.Fatalf("seed target: %v", err)
	}

	store, err := sqlite.NewDB(":memory:")
	if err != nil {
		t.Fatalf("sqlite.NewDB failed: %v", err)
	}
	store.SetMaxOpenConns(1)
	store.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = store.Close() })
	if err := sqlite.MigrateUp(store); err != nil {
		t.Fatalf("MigrateUp failed: %v", err)
	}

	hash, err := pkgauth.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	return NewRouter(Deps{
		Auth:      domainauth.NewService("admin", hash),
		Executor:  query.NewExecutor(target, time.Second),
		Inspector: schema.NewInspector(target, "sqlite"),
		Audit:     domainaudit.NewService(store),
		Database:  "main",
	})
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()
	body := []byte(`{"username": "admin", "password": "hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login response: %v", err)
	}
	return resp.Token
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/query"},
		{http.MethodGet, "/api/v1/databases"},
		{http.MethodGet, "/api/v1/schema"},
		{http.MethodGet, "/api/v1/history"},
		{http.MethodPost, "/api/v1/chat"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401, got %d", route.method, route.path, rec.Code)
		}
	}
}

func TestRouter_QueryEndToEnd(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	body := []byte(`{"query": "SELECT name FROM employees"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var env query.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if len(env.Results) != 1 || env.Results[0]["name"] != "Alice" {
		t.Errorf("unexpected results: %v", env.Results)
	}
}

func TestRouter_ChatUnavailableWithoutProvider(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	body := []byte(`{"message": "hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
