package http

import (
	"net/http"

	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
)

// SessionHandler returns the identity behind the caller's cookie.
type SessionHandler struct{}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeUnauthorized, "Authentication required")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatesdk.SessionResponse{
		UserID:   id.UserID,
		Username: id.Username,
		Role:     string(id.Role),
	})
}
