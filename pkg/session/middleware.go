package session

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/pgsession/pkg/logger"
)

// Middleware attaches a session to every request and persists it afterwards.
//
// On the way in the session is resumed from the cookie or started, stored in
// the request context and, unless it is a brand-new session on a safe method,
// checked for CSRF. On the way out, before the first header byte is written,
// the session is saved and the session and CSRF cookies are set.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sess, state := m.Acquire(ctx, r)
		if m.csrfEnabled() && sess.Token != "" {
			m.csrf.Prepare(sess)
		}

		r = r.WithContext(WithSession(ctx, sess, state))
		rw := newResponseWriter(w, func() { m.commit(r.Context(), w, sess) })

		if !m.checkCSRF(r, sess, state) {
			http.Error(rw, http.StatusText(http.StatusNotAcceptable), http.StatusNotAcceptable)
			return
		}

		next.ServeHTTP(rw, r)
		rw.commit()
	})
}

// commit saves the session and writes the response cookies.
func (m *Manager) commit(ctx context.Context, w http.ResponseWriter, sess *Session) {
	if err := m.Save(ctx, sess); err != nil {
		m.log.ErrorContext(ctx, "failed to save session", logger.Token(sess.Token), logger.Error(err))
	}

	if sess.Token == "" {
		return
	}

	if err := m.writeToken(w, sess); err != nil {
		m.log.ErrorContext(ctx, "failed to set session cookie", logger.Error(err))
		return
	}

	if m.csrfEnabled() {
		if err := m.csrf.IssueCookie(w, sess); err != nil {
			m.log.ErrorContext(ctx, "failed to set csrf cookie", logger.Error(err))
		}
	}
}

// checkCSRF reports whether the request may continue. Brand-new sessions on
// safe methods skip the check: they cannot carry a token yet.
func (m *Manager) checkCSRF(r *http.Request, sess *Session, state State) bool {
	if !m.csrfEnabled() {
		return true
	}

	if state == StateNew && !IsStateChanging(r.Method) {
		return true
	}

	if m.csrf.Check(r, sess) {
		return true
	}

	switch m.config.CSRFFailAction {
	case FailActionSilent:
		return true
	case FailActionLog:
		m.log.WarnContext(r.Context(), "csrf check failed",
			logger.State(state.String()),
			logger.Token(sess.Token),
		)
		return true
	default:
		m.log.WarnContext(r.Context(), "csrf check failed, request rejected",
			logger.State(state.String()),
			logger.Token(sess.Token),
		)
		return false
	}
}

func (m *Manager) csrfEnabled() bool {
	return m.csrf != nil && m.config.CSRFEnabled
}

// RequireAuth rejects requests whose session is not bound to a user with 401.
// It must run inside Middleware.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := FromContext(r.Context())
		if !ok || !sess.IsAuthenticated() {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
