package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/openbank/openbank-api/internal/api/shared"
	"github.com/openbank/openbank-api/internal/domain"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the auth middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// requireUserID extracts the user ID from the request context and writes a
// 401 response if it is missing. Returns false when the response has been
// written.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}
