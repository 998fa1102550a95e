package app

import (
	"os"
	"strconv"
	"time"

	"github.com/lockdownlabs/gatehouse/internal/gatehouse/service"
)

type Config struct {
	Issuer     string // Required: issuer label for provisioned TOTP secrets
	ResetToken string // Optional: token required to perform the destructive store reset

	DatabaseFile  string        // Optional: path to SQLite database file (default: ./gatehouse.db)
	PepperFile    string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	SessionSecret string        // Required: HMAC secret for identity cookies
	SessionTTL    time.Duration // Optional: identity cookie lifetime (default: 12h)
	SecureCookies bool          // Optional: mark cookies Secure (default: true outside dev)

	LockoutMode   string // Optional: lockout policy (advisory, enforcing) (default: advisory)
	LockoutLimit  int    // Optional: failed attempts before lockout (default: 3)
	TOTPSkew      int    // Optional: accepted 30s steps either side of now (default: 0)
	AuditFailures bool   // Optional: also audit failed login attempts (default: false)

	SeedUsername string // Optional: account seeded after a store reset
	SeedPassword string // Optional: password for the seeded account

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	AuditRetention       time.Duration // Audit event retention (default: 2160h / 90 days)
	AttemptTTL           time.Duration // Idle login-session lifetime (default: 30m)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:        getEnvOrDefault("GATEHOUSE_ISSUER", "gatehouse"),
		ResetToken:    os.Getenv("GATEHOUSE_RESET_TOKEN"), // Optional: if unset, reset is unreachable
		DatabaseFile:  getEnvOrDefault("GATEHOUSE_DATABASE_FILE", "gatehouse.db"),
		PepperFile:    getEnvOrDefault("GATEHOUSE_PEPPER_FILE", "pepper"),
		SessionSecret: os.Getenv("GATEHOUSE_SESSION_SECRET"),
		SessionTTL:    getEnvDurationOrDefault("GATEHOUSE_SESSION_TTL", 12*time.Hour),

		LockoutMode:   getEnvOrDefault("GATEHOUSE_LOCKOUT_MODE", service.LockoutAdvisory),
		LockoutLimit:  getEnvIntOrDefault("GATEHOUSE_LOCKOUT_LIMIT", service.DefaultAttemptLimit),
		TOTPSkew:      getEnvIntOrDefault("GATEHOUSE_TOTP_SKEW", 0),
		AuditFailures: getEnvBoolOrDefault("GATEHOUSE_AUDIT_FAILURES", false),

		SeedUsername: getEnvOrDefault("GATEHOUSE_SEED_USERNAME", "user1@test.com"),
		SeedPassword: getEnvOrDefault("GATEHOUSE_SEED_PASSWORD", "mysecretpassword"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		AuditRetention:       getEnvDurationOrDefault("GATEHOUSE_AUDIT_RETENTION", 90*24*time.Hour),
		AttemptTTL:           getEnvDurationOrDefault("GATEHOUSE_ATTEMPT_TTL", 30*time.Minute),
	}

	// Cookies stay Secure everywhere except local dev over plain http.
	cfg.SecureCookies = getEnvBoolOrDefault("GATEHOUSE_SECURE_COOKIES", cfg.Env != "dev")

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
