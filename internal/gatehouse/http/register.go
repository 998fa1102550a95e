package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
)

type RegisterHandler struct {
	RegisterService *service.RegisterService
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		httpx.WriteError(w, http.StatusBadRequest,
			gatesdk.ErrorCodeInvalidRequest, "Invalid form data")
		return
	}

	reg := service.Registration{
		Username:        r.FormValue("username"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		PINKey:          r.FormValue("pinkey"),
	}

	user, err := h.RegisterService.Register(ctx, reg, remoteAddr(r))
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			httpx.WriteError(w, http.StatusBadRequest,
				gatesdk.ErrorCodeValidationError,
				fmt.Sprintf("%s %s", vErr.Field, vErr.Reason))

		case errors.Is(err, service.ErrUsernameTaken):
			httpx.WriteError(w, http.StatusConflict,
				gatesdk.ErrorCodeUsernameTaken, "Username is already taken")

		default:
			log.Error("failed to register user", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError,
				gatesdk.ErrorCodeServerError, "Failed to register user")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, gatesdk.RegisterResponse{
		UserID:   user.ID,
		Username: user.Username,
	})
}
