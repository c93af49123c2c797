package middleware

import (
	"log/slog"
	"net/http"
	"slices"
)

// RequireRole checks if the actor has the required role
func RequireRole(roleName string) func(http.Handler) http.Handler {
	return RequireAnyRole(roleName)
}

// RequireAnyRole checks if the actor has any of the required roles
func RequireAnyRole(roleNames ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := GetActorRef(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Actor not authenticated")
				return
			}

			roles := GetRoles(r)
			if !slices.ContainsFunc(roleNames, func(name string) bool { return slices.Contains(roles, name) }) {
				slog.Debug("Role check failed", "actor_ref", actor, "required", roleNames, "roles", roles)
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
