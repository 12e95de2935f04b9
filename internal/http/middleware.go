package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/petalmart/storefront/internal/auth"
)

type contextKey string

const userIDKey = contextKey("user_id")

// TokenVerifier resolves a bearer credential to customer claims. Token
// minting and validation live in the auth collaborator; this layer only
// consumes the result.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Authenticator rejects requests without a valid bearer token and attaches
// the resolved customer id to the request context.
func Authenticator(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "authorization header missing")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid authorization header format")
				return
			}

			claims, err := verifier.Verify(parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userIDFromContext(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		return userID
	}
	return 0
}
