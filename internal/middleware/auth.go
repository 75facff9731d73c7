package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aaxiero/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// AdminIDKey is the context key for the authenticated admin's ID.
const AdminIDKey contextKey = "adminID"

// AdminEmailKey is the context key for the authenticated admin's email.
const AdminEmailKey contextKey = "adminEmail"

// AdminRoleKey is the context key for the authenticated admin's role.
const AdminRoleKey contextKey = "adminRole"

// RequireAuth returns middleware that validates a Bearer JWT carrying the
// admin role and injects its claims into the request context.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "authorization header required")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}

			token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				response.Unauthorized(w, "invalid or expired token")
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				response.Unauthorized(w, "invalid token claims")
				return
			}

			adminID, _ := claims["sub"].(string)
			email, _ := claims["email"].(string)
			role, _ := claims["role"].(string)
			if adminID == "" || role != "admin" {
				response.Unauthorized(w, "admin access required")
				return
			}

			ctx := context.WithValue(r.Context(), AdminIDKey, adminID)
			ctx = context.WithValue(ctx, AdminEmailKey, email)
			ctx = context.WithValue(ctx, AdminRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
