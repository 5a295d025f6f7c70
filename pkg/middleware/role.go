package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// RequireRole restricts a route to users with the given role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUserFromContext(r.Context())
			if claims == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.Role != role {
				logrus.WithFields(logrus.Fields{
					"user_id":  claims.UserID,
					"required": role,
					"actual":   claims.Role,
				}).Warn("Insufficient role for route")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
