package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"

	"plan-review/internal/auth"
)

type contextKey string

const (
	ActorRefKey contextKey = "actor_ref"
	RolesKey    contextKey = "roles"
)

// AuthMiddleware validates bearer tokens
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate validates the bearer token and adds the actor to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		scheme, token, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			respondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.ActorRef(), claims.AllRoles())))
	})
}

// WithActor stores the actor and roles on ctx
func WithActor(ctx context.Context, actorRef string, roles []string) context.Context {
	ctx = context.WithValue(ctx, ActorRefKey, actorRef)
	return context.WithValue(ctx, RolesKey, roles)
}

// GetActorRef retrieves the actor reference from the request context
func GetActorRef(r *http.Request) (string, bool) {
	actor, ok := r.Context().Value(ActorRefKey).(string)
	return actor, ok && actor != ""
}

// GetRoles retrieves the actor's roles from the request context
func GetRoles(r *http.Request) []string {
	roles, _ := r.Context().Value(RolesKey).([]string)
	return roles
}

// HasRole reports whether the authenticated actor holds role
func HasRole(r *http.Request, role string) bool {
	return slices.Contains(GetRoles(r), role)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
