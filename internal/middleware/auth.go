// path: internal/middleware/auth.go

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/techappsUT/socialqueue-ucb/internal/auth"
)

type contextKey string

const (
	OperatorIDKey    contextKey = "operator_id"
	OperatorEmailKey contextKey = "operator_email"
	OperatorRoleKey  contextKey = "operator_role"
)

type AuthMiddleware struct {
	tokenService *auth.TokenService
}

func NewAuthMiddleware(tokenService *auth.TokenService) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
	}
}

// RequireAuth validates JWT token and adds operator info to context
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := parts[1]
		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			switch err {
			case auth.ErrExpiredToken:
				http.Error(w, "Token has expired", http.StatusUnauthorized)
			default:
				http.Error(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, OperatorIDKey, claims.OperatorID)
		ctx = context.WithValue(ctx, OperatorEmailKey, claims.Email)
		ctx = context.WithValue(ctx, OperatorRoleKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth validates token if present but doesn't require it
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			next.ServeHTTP(w, r)
			return
		}

		token := parts[1]
		claims, err := m.tokenService.ValidateAccessToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, OperatorIDKey, claims.OperatorID)
		ctx = context.WithValue(ctx, OperatorEmailKey, claims.Email)
		ctx = context.WithValue(ctx, OperatorRoleKey, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Helper functions to extract operator info from context

func GetOperatorID(ctx context.Context) (uuid.UUID, error) {
	idStr, ok := ctx.Value(OperatorIDKey).(string)
	if !ok {
		return uuid.Nil, auth.ErrInvalidToken
	}
	return uuid.Parse(idStr)
}

func GetOperatorEmail(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(OperatorEmailKey).(string)
	return email, ok
}

func GetOperatorRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(OperatorRoleKey).(string)
	return role, ok
}
