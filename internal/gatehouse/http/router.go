package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
	"github.com/lockdownlabs/gatehouse/pkg/httpx"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store    store.Store
	sessions *session.Manager
	attempts *session.AttemptStore
	secure   bool

	LoginService    *service.LoginService
	RegisterService *service.RegisterService
	AdminService    *service.AdminService
	AuditService    *service.AuditService
	Lockout         service.LockoutPolicy
}

func NewRouter(
	st store.Store,
	sessions *session.Manager,
	attempts *session.AttemptStore,
	buildVersion string,
	secure bool,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		sessions:     sessions,
		attempts:     attempts,
		secure:       secure,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSession()
	r.registerAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		LoginService: r.LoginService,
		Lockout:      r.Lockout,
		Sessions:     r.sessions,
		Attempts:     r.attempts,
		Secure:       r.secure,
	}

	// GET /login - lenient rate limit (just reports attempt state)
	r.Mux.Handle("GET /v1/login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /login - strict rate limit by IP + username form field so one
	// address can't brute-force many accounts in parallel
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandlePost),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	// POST /register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{RegisterService: r.RegisterService}
	r.Mux.Handle("POST /v1/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /logout - authenticated, moderate rate limit
	logoutHandler := &LogoutHandler{
		Sessions: r.sessions,
		Audit:    r.AuditService,
	}
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(logoutHandler,
			SessionMiddleware(r.sessions),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{}

	secured := httpx.Chain(h,
		SessionMiddleware(r.sessions),
		httpx.RateLimitByIP(httpx.LenientLimit),
	)

	r.Mux.Handle("GET /v1/session", secured)
}

func (r *Router) registerAdmin() {
	h := &AdminHandler{AdminService: r.AdminService}

	// GET /admin/users - admin only, moderate rate limit
	securedUsers := httpx.Chain(http.HandlerFunc(h.HandleListUsers),
		SessionMiddleware(r.sessions),
		RequireAdmin(),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)

	// GET /admin/events - admin only, moderate rate limit
	securedEvents := httpx.Chain(http.HandlerFunc(h.HandleListEvents),
		SessionMiddleware(r.sessions),
		RequireAdmin(),
		httpx.RateLimitByIP(httpx.ModerateLimit),
	)

	r.Mux.Handle("GET /v1/admin/users", securedUsers)
	r.Mux.Handle("GET /v1/admin/events", securedEvents)

	// POST /admin/reset - the route only exists when a reset token was
	// configured at startup, so the destructive path is unreachable by
	// default. The token is the authorization: a fresh (or wiped) store has
	// no admin account yet, so this doubles as the bootstrap path, like a
	// one-time setup endpoint. Strict rate limit on top of the token check.
	if r.AdminService.ResetToken != "" {
		r.Mux.Handle("POST /v1/admin/reset",
			httpx.Chain(http.HandlerFunc(h.HandleReset),
				httpx.RateLimitByIP(httpx.StrictLimit),
			),
		)
	}
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
