package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/iho/greenledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ServiceContextKey is the context key for the calling service's claims
	ServiceContextKey ContextKey = "service"
)

// TokenVerifier checks internal service tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// ServiceAuth guards internal routes: only sibling services holding a token
// addressed to this service get through.
func ServiceAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				message := "invalid service token"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "service token expired"
				}
				writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
				return
			}

			ctx := context.WithValue(r.Context(), ServiceContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerFromContext returns the claims of the calling service.
func CallerFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ServiceContextKey).(*auth.Claims)
	return claims, ok
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `","message":"` + message + `","retryable":false}`))
}
