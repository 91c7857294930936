package session

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/pgsession/pkg/cookie"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithStore sets the session store
func WithStore(store Store) Option {
	return func(m *Manager) {
		m.store = store
	}
}

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithCookieName sets the session cookie name
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.config.CookieName = name
	}
}

// WithIdleTimeout sets the idle timeout for new sessions
func WithIdleTimeout(idle time.Duration) Option {
	return func(m *Manager) {
		m.config.IdleTimeout = idle
	}
}

// WithCookieManager sets the cookie writer. A manager holding secrets signs
// the session cookie.
func WithCookieManager(cookieMgr *cookie.Manager) Option {
	return func(m *Manager) {
		m.cookies = cookieMgr
	}
}

// WithCSRF sets the CSRF collaborator consulted by the middleware.
func WithCSRF(guard CSRFGuard) Option {
	return func(m *Manager) {
		m.csrf = guard
	}
}

// WithLogger sets the logger. Nil loggers are ignored.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}
