package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

// RequireVerified middleware gates capture and AI routes to accounts
// that have confirmed their email address
func RequireVerified(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			verified, ok := GetUserVerified(r.Context())
			if !ok {
				logger.Warn("Verification state not found in context")
				respondWithError(w, http.StatusForbidden, "email verification required")
				return
			}

			if !verified {
				userID, _ := GetUserID(r.Context())
				logger.Warn("Unverified account attempted a gated endpoint",
					zap.String("user_id", userID),
				)
				respondWithError(w, http.StatusForbidden, "email verification required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
