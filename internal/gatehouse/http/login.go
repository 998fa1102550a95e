package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
	"github.com/lockdownlabs/gatehouse/pkg/totpx"
)

// LoginHandler serves the login endpoint pair: GET reports the browsing
// session's attempt state, POST runs one submission through the login state
// machine.
type LoginHandler struct {
	LoginService *service.LoginService
	Lockout      service.LockoutPolicy
	Sessions     *session.Manager
	Attempts     *session.AttemptStore
	Secure       bool
}

// cookieActivator binds session activation to the in-flight response, so the
// login service can activate an identity without knowing about HTTP.
type cookieActivator struct {
	w        http.ResponseWriter
	sessions *session.Manager
}

func (a *cookieActivator) Activate(id domain.Identity) error {
	return a.sessions.Activate(a.w, id)
}

// HandleGet reports whether this browsing session has already exceeded its
// attempt limit, so a login form can show the warning before another
// submission is made.
func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sid := session.EnsureSID(w, r, h.Secure)
	sess := h.Attempts.Get(sid)

	resp := gatesdk.LoginPromptResponse{}
	if h.Lockout.Exceeded(sess) {
		resp.Exceeded = true
		resp.Message = service.ExceededMessage
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// HandlePost runs one login submission. Both factors must pass in a single
// request; the response never reveals which one failed beyond the distinct
// 2FA message the legacy flow already exposed.
func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			gatesdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	pin := r.FormValue("pin")

	if username == "" || password == "" || pin == "" {
		httpx.WriteError(w, http.StatusBadRequest,
			gatesdk.ErrorCodeInvalidRequest, "username, password and pin are required")
		return
	}

	sid := session.EnsureSID(w, r, h.Secure)
	sess := h.Attempts.Get(sid)

	result, err := h.LoginService.Login(ctx, sess, username, password, pin,
		remoteAddr(r), &cookieActivator{w: w, sessions: h.Sessions})
	if err != nil {
		h.writeLoginError(w, log, sess, err)
		return
	}

	// The counter entry has served its purpose for this browsing session.
	h.Attempts.Drop(sid)

	httpx.WriteJSON(w, http.StatusOK, gatesdk.LoginResponse{
		UserID:     result.User.ID,
		Username:   result.User.Username,
		Role:       string(result.User.Role),
		RedirectTo: result.RedirectTo,
	})
}

func (h *LoginHandler) writeLoginError(
	w http.ResponseWriter,
	log *slog.Logger,
	sess *domain.LoginSession,
	err error,
) {
	switch {
	case errors.Is(err, service.ErrTooManyAttempts):
		httpx.WriteError(w, http.StatusTooManyRequests,
			gatesdk.ErrorCodeTooManyAttempts, service.ExceededMessage)

	case errors.Is(err, service.ErrInvalidCredentials):
		// The warning carries the remaining-attempt count; unknown usernames
		// and wrong passwords produce identical responses.
		httpx.WriteError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeInvalidCredentials, h.Lockout.Warning(sess.FailedAttempts))

	case errors.Is(err, totpx.ErrMalformedPIN):
		// Shape violation: rejected before any TOTP work, counter untouched.
		httpx.WriteError(w, http.StatusBadRequest,
			gatesdk.ErrorCodeInvalidTOTP, service.InvalidTOTPMessage)

	case errors.Is(err, service.ErrInvalidTOTP):
		httpx.WriteError(w, http.StatusUnauthorized,
			gatesdk.ErrorCodeInvalidTOTP, service.InvalidTOTPMessage)

	default:
		log.Error("login failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError,
			gatesdk.ErrorCodeServerError, "Failed to process login")
	}
}

// remoteAddr prefers the X-Forwarded-For chain when present, matching the
// rate limiter's notion of the client address.
func remoteAddr(r *http.Request) string {
	return httpx.IPKeyExtractor(r)
}
