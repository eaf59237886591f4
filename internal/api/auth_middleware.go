/**
 * @description
 * This file contains the bearer-token authentication middleware. It
 * extracts the session token from the Authorization header, verifies the
 * signature and expiry, and injects the account identity into the request
 * context for downstream handlers.
 */
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/reckon/reckon-api/internal/app"
)

type contextKey string

const userIDContextKey contextKey = "userID"
const userEmailContextKey contextKey = "userEmail"

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok && id != ""
}

// AuthMiddleware validates session tokens and injects the account identity
// into the request context.
func AuthMiddleware(tokens *app.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if authHeader == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Success: false,
					Kind:    app.KindInvalidCredentials,
					Message: "Access denied, token missing",
				})
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || strings.TrimSpace(tokenString) == "" {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Success: false,
					Kind:    app.KindInvalidCredentials,
					Message: "Invalid Authorization header format",
				})
				return
			}

			claims, err := tokens.Verify(strings.TrimSpace(tokenString))
			if err == nil {
				// The subject must be a well-formed account UUID.
				_, err = uuid.Parse(claims.Subject)
			}
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, errorResponse{
					Success: false,
					Kind:    app.KindInvalidCredentials,
					Message: "Invalid token",
				})
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, claims.Subject)
			if claims.Email != "" {
				ctx = context.WithValue(ctx, userEmailContextKey, claims.Email)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
