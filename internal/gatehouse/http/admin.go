package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
)

// AdminHandler serves the administrative surface: user listing, the audit
// event view, and the token-gated destructive reset.
type AdminHandler struct {
	AdminService *service.AdminService
}

func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.AdminService.ListUsers(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			gatesdk.ErrorCodeServerError, "Failed to list users")
		return
	}

	summaries := make([]gatesdk.UserSummary, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, userSummary(u))
	}

	httpx.WriteJSON(w, http.StatusOK, summaries)
}

func (h *AdminHandler) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httpx.WriteError(w, http.StatusBadRequest,
				gatesdk.ErrorCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := h.AdminService.RecentEvents(ctx, limit)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list audit events", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			gatesdk.ErrorCodeServerError, "Failed to list audit events")
		return
	}

	summaries := make([]gatesdk.AuditEventSummary, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, gatesdk.AuditEventSummary{
			ID:         e.ID,
			Kind:       string(e.Kind),
			SubjectID:  e.SubjectID,
			Username:   e.Username,
			RemoteAddr: e.RemoteAddr,
			CreatedAt:  e.CreatedAt,
		})
	}

	httpx.WriteJSON(w, http.StatusOK, summaries)
}

func (h *AdminHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			gatesdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	seeded, err := h.AdminService.ResetStore(ctx, r.FormValue("token"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrResetDisabled):
			httpx.WriteError(w, http.StatusNotFound,
				gatesdk.ErrorCodeResetDisabled, "Store reset is not enabled")

		case errors.Is(err, service.ErrResetUnauthorized):
			httpx.WriteError(w, http.StatusForbidden,
				gatesdk.ErrorCodeForbidden, "Invalid reset token")

		default:
			log.Error("store reset failed", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				gatesdk.ErrorCodeServerError, "Failed to reset store")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, gatesdk.ResetResponse{
		SeedUserID:   seeded.User.ID,
		SeedUsername: seeded.User.Username,
		SeedSecret:   seeded.TOTPSecret,
	})
}

func userSummary(u domain.User) gatesdk.UserSummary {
	return gatesdk.UserSummary{
		ID:              u.ID,
		Username:        u.Username,
		Role:            string(u.Role),
		LastLoggedIn:    u.LastLoggedIn,
		CurrentLoggedIn: u.CurrentLoggedIn,
		CreatedAt:       u.CreatedAt,
	}
}
