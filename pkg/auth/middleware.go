package auth

import (
	"net/http"
	"strings"

	"github.com/storehub/storehub/pkg/web"
)

// Middleware verifies the Bearer token in the Authorization header.
// On success the user ID from the token claims is added to the request
// context; otherwise a 401 envelope is written.
func Middleware(manager *Manager, rp *web.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				rp.RespondError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				rp.RespondError(w, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			claims, err := manager.ValidateToken(tokenString)
			if err != nil {
				rp.RespondError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			ctx := web.WithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContextUserID retrieves the authenticated user ID, writing a 401 envelope
// when it is missing. Returns the ID and a boolean indicating success.
func ContextUserID(w http.ResponseWriter, r *http.Request, rp *web.Responder) (int64, bool) {
	userID, ok := web.GetUserID(r.Context())
	if !ok || userID <= 0 {
		rp.RespondError(w, http.StatusUnauthorized, "Unauthorized: Missing or invalid user ID")
		return 0, false
	}
	return userID, true
}
