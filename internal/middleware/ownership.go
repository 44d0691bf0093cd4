package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequireClientOwnership ensures the authenticated client matches the
// {clientID} path parameter. Requests for another client's resources are
// rejected before any domain logic runs.
func RequireClientOwnership(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authenticatedID, ok := GetUserID(r.Context())
			if !ok {
				logger.Warn("User ID not found in context")
				respondWithError(w, http.StatusForbidden, "unauthorized")
				return
			}

			requestedID, err := strconv.ParseInt(chi.URLParam(r, "clientID"), 10, 64)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "invalid client ID")
				return
			}

			if authenticatedID != requestedID {
				logger.Warn("Client attempted to access another client's resources",
					zap.Int64("authenticated_id", authenticatedID),
					zap.Int64("requested_id", requestedID),
				)
				respondWithError(w, http.StatusForbidden, "unauthorized")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
