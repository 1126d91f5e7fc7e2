// path: internal/middleware/rbac.go

package middleware

import (
	"net/http"

	"github.com/techappsUT/socialqueue-ucb/internal/operator"
)

// RequireRole checks if the operator has one of the required roles.
func RequireRole(roles ...operator.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			opRole, ok := GetOperatorRole(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			hasRole := false
			for _, role := range roles {
				if opRole == string(role) {
					hasRole = true
					break
				}
			}

			if !hasRole {
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates the template/time-slot/config CRUD surface of spec §6
// to the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(operator.RoleAdmin)(next)
}

// RequireReviewer gates the approve/skip HTTP endpoints to admins and
// reviewers (the chat-token path bypasses this, see ChatNotifier/review.tokens).
func RequireReviewer(next http.Handler) http.Handler {
	return RequireRole(operator.RoleAdmin, operator.RoleReviewer)(next)
}
