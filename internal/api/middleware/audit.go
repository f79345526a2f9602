// HTTP audit middleware for protected routes.
package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/matiasleandrokruk/sqlpilot/internal/api/ctxkeys"
	domainaudit "github.com/matiasleandrokruk/sqlpilot/internal/domain/audit"
)

// RequestRecorder is the minimal contract used by AuditMiddleware.
// domainaudit.Service satisfies this interface.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, evt domainaudit.RequestEvent) error
}

// AuditMiddleware records protected HTTP requests into audit_event.
// Expected order in router: AuthMiddleware -> AuditMiddleware -> handlers.
func AuditMiddleware(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recorder == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, ok := getStringContext(r.Context(), ctxkeys.UserID)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			sw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r)

			_ = recorder.RecordRequest(r.Context(), domainaudit.RequestEvent{
				ActorID:    userID,
				Action:     actionFromRequest(r.Method, r.URL.Path),
				Method:     r.Method,
				Path:       r.URL.Path,
				StatusCode: sw.statusCode,
				DurationMS: time.Since(start).Milliseconds(),
				Outcome:    outcomeFromStatus(sw.statusCode),
			})
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func getStringContext(ctx context.Context, key ctxkeys.Key) (string, bool) {
	v, ok := ctx.Value(key).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func outcomeFromStatus(statusCode int) domainaudit.Outcome {
	if statusCode >= 200 && statusCode < 300 {
		return domainaudit.OutcomeSuccess
	}
	return domainaudit.OutcomeFailure
}

// actionFromRequest derives a stable action name from the route, e.g.
// POST /api/v1/query -> execute_query, GET /api/v1/history -> list_history.
func actionFromRequest(method, path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) < 3 || segments[0] != "api" || segments[1] != "v1" {
		return strings.ToLower(method) + "_request"
	}

	resource := segments[2]
	switch {
	case method == http.MethodPost && resource == "query":
		return "execute_query"
	case method == http.MethodPost && resource == "chat":
		return "chat"
	case method == http.MethodGet:
		return "list_" + resource
	default:
		return strings.ToLower(method) + "_" + resource
	}
}
