package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/pgsession/pkg/clientip"
	"github.com/dmitrymomot/pgsession/pkg/cookie"
	"github.com/dmitrymomot/pgsession/pkg/logger"
)

// tokenBytes is the amount of randomness in a session token (256 bits).
const tokenBytes = 32

const unknownUserAgent = "unknown"

// Manager drives the session life-cycle of a request: start, resume,
// validate, save and destroy. It holds no per-request state and is safe for
// concurrent use.
type Manager struct {
	store   Store
	config  Config
	cookies *cookie.Manager
	csrf    CSRFGuard
	log     *slog.Logger
}

// New creates a new session manager with the given options
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
		log:    logger.Discard(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore()
	}

	if m.cookies == nil {
		// Without secrets construction cannot fail.
		m.cookies, _ = cookie.New(nil)
	}

	m.log = m.log.With(logger.Component("session"))

	return m
}

// Config returns the configuration the manager runs with.
func (m *Manager) Config() Config {
	return m.config
}

// Start creates a fresh session for the request and inserts it.
// A failed insert is logged and the session is still returned: the request
// proceeds with it, it just will not be found next time.
func (m *Manager) Start(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = unknownUserAgent
	}

	sess := NewSession(token, m.config.IdleTimeout, clientip.FromRequest(r), userAgent)
	if m.csrf != nil && m.config.CSRFEnabled {
		m.csrf.Prepare(sess)
	}

	if err := m.store.Insert(ctx, sess); err != nil {
		m.log.ErrorContext(ctx, "failed to insert session", logger.Token(token), logger.Error(err))
	}

	return sess, nil
}

// Resume loads the session stored under token and validates it against the
// request. On success the state is StateResume; otherwise StateInvalid and the
// error tells why: ErrSessionNotFound, ErrSessionExpired, ErrInvalidSession or
// a store failure.
func (m *Manager) Resume(ctx context.Context, r *http.Request, token string) (*Session, State, error) {
	if token == "" {
		return nil, StateInvalid, ErrSessionNotFound
	}

	sess, err := m.store.SelectByToken(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			m.log.ErrorContext(ctx, "failed to load session", logger.Token(token), logger.Error(err))
		}
		return nil, StateInvalid, err
	}

	if err := m.Validate(sess, r); err != nil {
		return nil, StateInvalid, err
	}

	return sess, StateResume, nil
}

// Validate accepts a session only if it was found and has not been idle for
// longer than its timeout. Client checks apply when enabled in Config.
func (m *Manager) Validate(sess *Session, r *http.Request) error {
	if sess == nil || sess.Token == "" {
		return ErrSessionNotFound
	}

	if sess.IsExpired(time.Now()) {
		return ErrSessionExpired
	}

	if m.config.ValidateIP && sess.IPAddress != clientip.FromRequest(r) {
		return ErrInvalidSession
	}

	if m.config.ValidateUserAgent {
		userAgent := r.UserAgent()
		if userAgent == "" {
			userAgent = unknownUserAgent
		}
		if sess.UserAgent != userAgent {
			return ErrInvalidSession
		}
	}

	return nil
}

// Acquire returns the session for the request: the resumed one when the
// cookie carries a valid token, a freshly started one otherwise. A rejected
// token is destroyed before the new session is started. Acquire never fails;
// if not even a token can be generated the session has an empty token and
// no cookie will be issued for it.
func (m *Manager) Acquire(ctx context.Context, r *http.Request) (*Session, State) {
	if token := m.readToken(r); token != "" {
		sess, state, err := m.Resume(ctx, r, token)
		if err == nil {
			return sess, state
		}

		m.log.DebugContext(ctx, "discarding session token",
			logger.Token(token),
			logger.State(state.String()),
			logger.Error(err),
		)
		if err := m.Destroy(ctx, token); err != nil {
			m.log.ErrorContext(ctx, "failed to destroy session", logger.Token(token), logger.Error(err))
		}
	}

	sess, err := m.Start(ctx, r)
	if err != nil {
		m.log.ErrorContext(ctx, "failed to start session", logger.Error(err))
		return &Session{Data: make(map[string]any)}, StateNew
	}

	return sess, StateNew
}

// Save bumps the updated timestamp and persists the session.
// Sessions without a token are not persisted.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return nil
	}

	sess.touch(time.Now())
	return m.store.Update(ctx, sess)
}

// Destroy deletes the session stored under token.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.store.DeleteByToken(ctx, token)
}

// Logout destroys the session of the current request and expires its cookie
// and the CSRF cookie.
// The middleware will neither save it nor issue a new cookie afterwards.
func (m *Manager) Logout(ctx context.Context, w http.ResponseWriter) error {
	sess, ok := FromContext(ctx)
	if !ok {
		return ErrNoSession
	}

	err := m.Destroy(ctx, sess.Token)
	m.cookies.Delete(w, m.config.CookieName, m.cookieOptions()...)
	if m.csrfEnabled() {
		m.csrf.ExpireCookie(w)
	}

	sess.Token = ""
	sess.UserID = ""
	sess.Clear()

	return err
}

// Clean deletes every session that is idle-expired now.
func (m *Manager) Clean(ctx context.Context) (int64, error) {
	return m.store.DeleteExpiredBefore(ctx, time.Now())
}

// RunCleanup calls Clean every interval until ctx is done.
// A non-positive interval disables the sweep.
func (m *Manager) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n, err := m.Clean(ctx)
			if err != nil {
				m.log.ErrorContext(ctx, "failed to clean expired sessions", logger.Error(err))
				continue
			}
			if n > 0 {
				m.log.DebugContext(ctx, "expired sessions cleaned", logger.Count(n))
			}
		case <-ctx.Done():
			return
		}
	}
}

// EnsureSchema asks the store to create its table. Failures are logged and
// returned, callers may continue against a pre-provisioned schema.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	if err := m.store.EnsureSchema(ctx); err != nil {
		m.log.ErrorContext(ctx, "failed to ensure session schema", logger.Error(err))
		return err
	}
	return nil
}

// readToken extracts the session token from the request cookie.
func (m *Manager) readToken(r *http.Request) string {
	var (
		token string
		err   error
	)
	if m.cookies.CanSign() {
		token, err = m.cookies.GetSigned(r, m.config.CookieName)
	} else {
		token, err = m.cookies.Get(r, m.config.CookieName)
	}
	if err != nil {
		return ""
	}
	return token
}

// writeToken issues the session cookie, expiring after the idle timeout.
func (m *Manager) writeToken(w http.ResponseWriter, sess *Session) error {
	opts := append(m.cookieOptions(), cookie.WithMaxAge(int(sess.Idle.Seconds())))
	if m.cookies.CanSign() {
		return m.cookies.SetSigned(w, m.config.CookieName, sess.Token, opts...)
	}
	return m.cookies.Set(w, m.config.CookieName, sess.Token, opts...)
}

func (m *Manager) cookieOptions() []cookie.Option {
	return []cookie.Option{
		cookie.WithPath(m.config.CookiePath),
		cookie.WithDomain(m.config.CookieDomain),
		cookie.WithSecure(m.config.CookieSecure),
		cookie.WithHTTPOnly(m.config.CookieHTTPOnly),
		cookie.WithSameSite(m.config.CookieSameSite.HTTP()),
	}
}

// generateToken creates a cryptographically secure token
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", errors.Join(ErrTokenGeneration, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
