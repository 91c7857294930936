package session

import (
	"time"

	"github.com/dmitrymomot/pgsession/pkg/cookie"
)

// FailAction decides what happens to a request that fails the CSRF check.
type FailAction string

const (
	// FailActionFail rejects the request with 406 Not Acceptable.
	FailActionFail FailAction = "fail"
	// FailActionLog records the failure and lets the request through.
	FailActionLog FailAction = "log"
	// FailActionSilent lets the request through without a trace.
	FailActionSilent FailAction = "silent"
)

// Config holds session configuration
type Config struct {
	// CookieName is the name of the session cookie (default: "sid")
	CookieName     string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`
	CookieDomain   string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`
	CookiePath     string `env:"SESSION_COOKIE_PATH" envDefault:"/"`
	CookieSecure   bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool   `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	// CookieSameSite is one of lax, strict, none or default.
	CookieSameSite cookie.SameSite `env:"SESSION_COOKIE_SAME_SITE" envDefault:"lax"`

	// IdleTimeout is the inactivity window after which a session is expired
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"24h"`

	// ValidateIP and ValidateUserAgent reject sessions resumed from a different
	// client. Off by default: mobile networks and proxies change addresses.
	ValidateIP        bool `env:"SESSION_VALIDATE_IP" envDefault:"false"`
	ValidateUserAgent bool `env:"SESSION_VALIDATE_USER_AGENT" envDefault:"false"`

	// CleanupInterval for expired sessions (0 to disable)
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`

	CSRFEnabled    bool       `env:"SESSION_CSRF_ENABLED" envDefault:"true"`
	CSRFFailAction FailAction `env:"SESSION_CSRF_FAIL_ACTION" envDefault:"fail"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:      "sid",
		CookiePath:      "/",
		CookieHTTPOnly:  true,
		CookieSameSite:  cookie.SameSiteLax,
		IdleTimeout:     24 * time.Hour,
		CleanupInterval: 10 * time.Minute,
		CSRFEnabled:     true,
		CSRFFailAction:  FailActionFail,
	}
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) *Manager {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(configOpts...)
}
