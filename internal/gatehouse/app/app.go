package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/lockdownlabs/gatehouse/internal/gatehouse/http"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/session"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store"
	"github.com/lockdownlabs/gatehouse/internal/gatehouse/store/drivers/sqlite"
	"github.com/lockdownlabs/gatehouse/pkg/cryptox"
	"github.com/lockdownlabs/gatehouse/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gatehouse service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	sessions *session.Manager
	attempts *session.AttemptStore
	lockout  service.LockoutPolicy

	// Services
	loginService        *service.LoginService
	registerService     *service.RegisterService
	adminService        *service.AdminService
	auditService        *service.AuditService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "gatehouse",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSessions(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("gatehouse starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gatehouse...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gatehouse stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSessions sets up the identity cookie manager and the login-attempt
// store. Without a configured session secret an ephemeral one is generated,
// which invalidates every identity cookie on restart.
func (app *Application) initSessions() error {
	secret := []byte(app.cfg.SessionSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		app.logger.Warn("no session secret configured, using an ephemeral one; sessions will not survive restarts")
	}

	app.sessions = &session.Manager{
		Secret: secret,
		TTL:    app.cfg.SessionTTL,
		Secure: app.cfg.SecureCookies,
	}
	app.attempts = session.NewAttemptStore(app.cfg.AttemptTTL)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.lockout = service.NewLockoutPolicy(app.cfg.LockoutMode, app.cfg.LockoutLimit)
	app.auditService = &service.AuditService{Store: app.db}

	skew := app.cfg.TOTPSkew
	if skew < 0 {
		skew = 0
	}

	app.loginService = &service.LoginService{
		Store:         app.db,
		Audit:         app.auditService,
		Lockout:       app.lockout,
		TOTPSkew:      uint(skew),
		AuditFailures: app.cfg.AuditFailures,
	}
	app.registerService = &service.RegisterService{
		Store: app.db,
		Audit: app.auditService,
	}
	app.adminService = &service.AdminService{
		Store:        app.db,
		ResetToken:   app.cfg.ResetToken,
		SeedUsername: app.cfg.SeedUsername,
		SeedPassword: app.cfg.SeedPassword,
		Issuer:       app.cfg.Issuer,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.attempts,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.AuditRetention,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.db,
		app.sessions,
		app.attempts,
		BuildVersion,
		app.cfg.SecureCookies,
		app.logger,
	)

	// Wire services to router
	router.LoginService = app.loginService
	router.RegisterService = app.registerService
	router.AdminService = app.adminService
	router.AuditService = app.auditService
	router.Lockout = app.lockout
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
