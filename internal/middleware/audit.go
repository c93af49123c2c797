package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"plan-review/internal/models"
)

// AuditWriter persists audit log entries
type AuditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditMiddleware records successful state-changing requests
type AuditMiddleware struct {
	writer AuditWriter
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(writer AuditWriter) *AuditMiddleware {
	return &AuditMiddleware{writer: writer}
}

// Log records action on resource once the wrapped handler has succeeded
func (m *AuditMiddleware) Log(action, resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			if wrapped.statusCode >= http.StatusBadRequest {
				return
			}

			actor, _ := GetActorRef(r)
			details, _ := json.Marshal(map[string]any{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     wrapped.statusCode,
				"remote_ip":  getIP(r),
				"user_agent": r.UserAgent(),
			})

			// Use a detached context, the request may already be finished
			ctx := context.WithoutCancel(r.Context())
			if err := m.writer.Create(ctx, &models.AuditLog{
				ActorRef: actor,
				Action:   action,
				Resource: resource,
				Details:  string(details),
			}); err != nil {
				slog.Error("Failed to write audit log", "action", action, "error", err)
			}
		})
	}
}
