// Route registration and go-chi router setup: public routes (/health,
// /auth/login) and JWT-protected routes (/api/v1/*).
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matiasleandrokruk/sqlpilot/internal/api/handlers"
	apmiddleware "github.com/matiasleandrokruk/sqlpilot/internal/api/middleware"
	domainaudit "github.com/matiasleandrokruk/sqlpilot/internal/domain/audit"
	domainauth "github.com/matiasleandrokruk/sqlpilot/internal/domain/auth"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/query"
	"github.com/matiasleandrokruk/sqlpilot/internal/domain/schema"
)

// Deps are the services the router exposes over HTTP. Chat may be nil when
// no LLM provider is configured; the chat endpoint then returns 503.
type Deps struct {
	Auth      *domainauth.Service
	Executor  *query.Executor
	Inspector *schema.Inspector
	Audit     *domainaudit.Service
	Chat      handlers.ChatService
	// Database is the default database for schema requests.
	Database string
}

// NewRouter creates and configures a chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on all routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// ===== PUBLIC ROUTES (no auth required) =====

	// Health check — unauthenticated, used by load balancers and probes.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`)) //nolint:errcheck
	})

	authHandler := handlers.NewAuthHandler(deps.Auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.Login) // POST /auth/login
	})

	// ===== PROTECTED ROUTES (JWT required via AuthMiddleware) =====

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apmiddleware.AuthMiddleware)
		r.Use(apmiddleware.AuditMiddleware(deps.Audit))

		queryHandler := handlers.NewQueryHandler(deps.Executor)
		schemaHandler := handlers.NewSchemaHandler(deps.Inspector, deps.Database)
		historyHandler := handlers.NewHistoryHandler(deps.Audit)

		r.Post("/query", queryHandler.Execute)           // POST /api/v1/query
		r.Get("/databases", schemaHandler.ListDatabases) // GET /api/v1/databases
		r.Get("/schema", schemaHandler.GetSchema)        // GET /api/v1/schema
		r.Get("/history", historyHandler.List)           // GET /api/v1/history

		if deps.Chat != nil {
			chatHandler := handlers.NewChatHandler(deps.Chat)
			r.Post("/chat", chatHandler.Chat) // POST /api/v1/chat
		} else {
			r.Post("/chat", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"error":"no LLM provider configured"}`)) //nolint:errcheck
			})
		}
	})

	return r
}
