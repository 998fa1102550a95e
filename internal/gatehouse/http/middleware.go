package http

import (
	"context"
	"net/http"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/domain"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/pkg/gatesdk"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
)

// SessionMiddleware verifies the identity cookie and injects the identity
// into the request context. Requests without a valid identity get 401.
func SessionMiddleware(sessions *session.Manager) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := sessions.Current(r)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized,
					gatesdk.ErrorCodeUnauthorized, "Authentication required")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, httpx.CtxKeyUserID, id.UserID)
			ctx = context.WithValue(ctx, httpx.CtxKeyUsername, id.Username)
			ctx = context.WithValue(ctx, httpx.CtxKeyRole, string(id.Role))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects any identity that is not an admin. Must run after
// SessionMiddleware.
func RequireAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := httpx.RoleFromContext(r.Context())
			if !ok || domain.Role(role) != domain.RoleAdmin {
				httpx.WriteError(w, http.StatusForbidden,
					gatesdk.ErrorCodeForbidden, "Admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// identityFromContext rebuilds the identity injected by SessionMiddleware.
func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	userID, ok := httpx.UserIDFromContext(ctx)
	if !ok {
		return domain.Identity{}, false
	}
	username, _ := ctx.Value(httpx.CtxKeyUsername).(string)
	role, _ := httpx.RoleFromContext(ctx)

	return domain.Identity{
		UserID:   userID,
		Username: username,
		Role:     domain.Role(role),
	}, true
}
