package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/dmitrymomot/pgsession/pkg/cookie"
	"github.com/dmitrymomot/pgsession/pkg/session"
)

// SessionKey is the session data key holding the CSRF token.
const SessionKey = "_csrf"

const tokenBytes = 32

// Protector implements session.CSRFGuard with a per-session token that is
// handed to the client in a readable cookie and must come back in a header
// or form field on state-changing requests.
type Protector struct {
	cfg        Config
	cookies    *cookie.Manager
	cookieOpts []cookie.Option
}

var _ session.CSRFGuard = (*Protector)(nil)

// New creates a Protector. Cookie options are applied to the CSRF cookie on
// top of the manager defaults; HttpOnly is always off so scripts can read it.
func New(cfg Config, cookies *cookie.Manager, opts ...cookie.Option) *Protector {
	cfg = cfg.withDefaults()
	return &Protector{
		cfg:        cfg,
		cookies:    cookies,
		cookieOpts: append(slices.Clone(opts), cookie.WithHTTPOnly(false)),
	}
}

// Prepare stores a fresh token in the session unless it already has one.
func (p *Protector) Prepare(sess *session.Session) {
	if token, ok := sess.GetString(SessionKey); ok && token != "" {
		return
	}
	token, err := generateToken()
	if err != nil {
		// Without a token every state-changing request fails the check.
		return
	}
	sess.Set(SessionKey, token)
}

// Check validates the request. With origin checking enabled the request must
// come from the request host or an allowed host. State-changing methods must
// also present the session token.
func (p *Protector) Check(r *http.Request, sess *session.Session) bool {
	changing := session.IsStateChanging(r.Method)

	if p.cfg.CheckOrigin && !p.sameOrigin(r, changing) {
		return false
	}

	if !changing {
		return true
	}

	expected, ok := sess.GetString(SessionKey)
	if !ok || expected == "" {
		return false
	}

	got := r.Header.Get(p.cfg.HeaderName)
	if got == "" && p.cfg.FormField != "" {
		got = r.PostFormValue(p.cfg.FormField)
	}
	if got == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1
}

// IssueCookie writes the session's token to the CSRF cookie.
func (p *Protector) IssueCookie(w http.ResponseWriter, sess *session.Session) error {
	token, ok := sess.GetString(SessionKey)
	if !ok || token == "" {
		return ErrNoToken
	}
	opts := append(slices.Clone(p.cookieOpts), cookie.WithMaxAge(int(sess.Idle.Seconds())))
	return p.cookies.Set(w, p.cfg.CookieName, token, opts...)
}

// ExpireCookie deletes the CSRF cookie on the client.
func (p *Protector) ExpireCookie(w http.ResponseWriter) {
	p.cookies.Delete(w, p.cfg.CookieName, p.cookieOpts...)
}

// sameOrigin compares the Origin (or Referer) host with the request host and
// the allowed hosts. Requests without either header pass only when they do
// not change state.
func (p *Protector) sameOrigin(r *http.Request, changing bool) bool {
	source := r.Header.Get("Origin")
	if source == "" {
		source = r.Header.Get("Referer")
	}
	if source == "" {
		return !changing
	}

	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return false
	}

	host := hostname(u.Host)
	if strings.EqualFold(host, hostname(r.Host)) {
		return true
	}
	return slices.ContainsFunc(p.cfg.AllowedHosts, func(h string) bool {
		return strings.EqualFold(host, hostname(h))
	})
}

func hostname(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
