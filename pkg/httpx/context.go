package httpx

import "context"

type ctxKey string

const (
	// CtxKeyUserID is the authenticated user's id, injected by the session
	// middleware.
	CtxKeyUserID ctxKey = "user_id"
	// CtxKeyUsername is the authenticated user's username.
	CtxKeyUsername ctxKey = "username"
	// CtxKeyRole is the authenticated user's role name.
	CtxKeyRole ctxKey = "role"
)

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyUserID).(string)
	return v, ok && v != ""
}

// RoleFromContext returns the authenticated user's role, if any.
func RoleFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyRole).(string)
	return v, ok && v != ""
}
