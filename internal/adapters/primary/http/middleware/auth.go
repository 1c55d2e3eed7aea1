package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lorrc/ticket-metrics/internal/auth"
	"github.com/lorrc/ticket-metrics/internal/core/domain"
	apperrors "github.com/lorrc/ticket-metrics/internal/core/errors"
	"github.com/lorrc/ticket-metrics/internal/infrastructure/logging"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ViewerClaimsKey is the key used to store token claims in the request context.
const ViewerClaimsKey contextKey = "viewerClaims"

// JWTMiddleware validates the JWT token from the Authorization header.
func JWTMiddleware(tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "Authorization header is required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeUnauthorized(w, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := tm.ValidateToken(parts[1])
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			// Add the claims to the context for downstream handlers to use.
			ctx := context.WithValue(r.Context(), ViewerClaimsKey, claims)
			ctx = logging.WithViewer(ctx, claims.Username())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewerFromContext returns the authenticated viewer, if any.
func ViewerFromContext(ctx context.Context) (*domain.Viewer, bool) {
	claims, ok := ctx.Value(ViewerClaimsKey).(*auth.Claims)
	if !ok || claims == nil {
		return nil, false
	}
	return &domain.Viewer{Username: claims.Username()}, true
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="ticket-metrics"`)
	writeAppError(w, apperrors.NewUnauthorizedError(message))
}

// writeAppError renders err in the same shape as the API error handler.
func writeAppError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": err.Message,
		"code":  err.Code,
	})
}
