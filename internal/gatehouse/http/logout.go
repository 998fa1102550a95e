package http

import (
	"net/http"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
)

// LogoutHandler deactivates the caller's identity cookie. Requires an
// authenticated session.
type LogoutHandler struct {
	Sessions *session.Manager
	Audit    *service.AuditService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := identityFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeUnauthorized, "Authentication required")
		return
	}

	h.Sessions.Deactivate(w)

	if err := h.Audit.Append(ctx, domain.EventLogout, id.UserID, id.Username, remoteAddr(r)); err != nil {
		slogx.FromContext(ctx).Error("failed to append logout audit event",
			"user_id", id.UserID, "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
