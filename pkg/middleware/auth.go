package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtutil "github.com/YeiyoNathnael/Green-Commitment-wall/pkg/jwt"
	"github.com/sirupsen/logrus"
)

type contextKey string

const userContextKey contextKey = "user_claims"

// AuthMiddleware validates the Bearer token and stores the claims in the
// request context.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				logrus.Warn("Missing or malformed Authorization header")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := jwtutil.ParseToken(tokenString, secret)
			if err != nil {
				logrus.WithError(err).Warn("Token validation failed")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated user's claims, or nil when the
// request is unauthenticated.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, ok := ctx.Value(userContextKey).(*jwtutil.Claims)
	if !ok {
		return nil
	}
	return claims
}
