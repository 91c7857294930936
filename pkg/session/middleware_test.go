package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pgsession/pkg/cookie"
	"github.com/dmitrymomot/pgsession/pkg/session"
)

// stubGuard is a CSRF collaborator whose verdict is fixed.
type stubGuard struct {
	pass     bool
	checked  int
	prepared int
	issued   int
	expired  int
}

func (g *stubGuard) Prepare(sess *session.Session) {
	g.prepared++
	sess.Set("_csrf", "csrf-token")
}

func (g *stubGuard) Check(*http.Request, *session.Session) bool {
	g.checked++
	return g.pass
}

func (g *stubGuard) IssueCookie(w http.ResponseWriter, sess *session.Session) error {
	g.issued++
	http.SetCookie(w, &http.Cookie{Name: "csrf_token", Value: "csrf-token"})
	return nil
}

func (g *stubGuard) ExpireCookie(w http.ResponseWriter) {
	g.expired++
	http.SetCookie(w, &http.Cookie{Name: "csrf_token", MaxAge: -1})
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func serve(h http.Handler, method string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, "/", nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

// counter increments a value in the session and reports the request state.
func counter() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.MustFromContext(r.Context())
		n, _ := sess.GetInt("n")
		sess.Set("n", n+1)
		w.Header().Set("X-State", session.StateFromContext(r.Context()).String())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_IssuesCookie(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	manager := session.New(session.WithStore(store), session.WithIdleTimeout(30*time.Minute))
	h := manager.Middleware(counter())

	rec := serve(h, http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", rec.Header().Get("X-State"))

	sid := findCookie(rec, "sid")
	require.NotNil(t, sid)
	assert.NotEmpty(t, sid.Value)
	assert.Equal(t, 1800, sid.MaxAge)
	assert.True(t, sid.HttpOnly)
	assert.Equal(t, "/", sid.Path)

	stored, err := store.SelectByToken(context.Background(), sid.Value)
	require.NoError(t, err)
	n, _ := stored.GetInt("n")
	assert.Equal(t, 1, n)
}

func TestMiddleware_Resumes(t *testing.T) {
	t.Parallel()

	manager := session.New()
	h := manager.Middleware(counter())

	first := serve(h, http.MethodGet)
	sid := findCookie(first, "sid")
	require.NotNil(t, sid)

	second := serve(h, http.MethodGet, sid)
	assert.Equal(t, "resume", second.Header().Get("X-State"))
	resumed := findCookie(second, "sid")
	require.NotNil(t, resumed)
	assert.Equal(t, sid.Value, resumed.Value)

	third := serve(h, http.MethodGet, resumed)
	assert.Equal(t, "resume", third.Header().Get("X-State"))

	sess, _, err := manager.Resume(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), sid.Value)
	require.NoError(t, err)
	n, _ := sess.GetInt("n")
	assert.Equal(t, 3, n)
}

func TestMiddleware_ExpiredCookie(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()
	manager := session.New(session.WithStore(store))
	h := manager.Middleware(counter())

	expired := session.NewSession("expired-token", time.Minute, "", "")
	expired.Updated = expired.Updated.Add(-time.Hour)
	require.NoError(t, store.Insert(ctx, expired))

	rec := serve(h, http.MethodGet, &http.Cookie{Name: "sid", Value: "expired-token"})
	assert.Equal(t, "new", rec.Header().Get("X-State"))

	sid := findCookie(rec, "sid")
	require.NotNil(t, sid)
	assert.NotEqual(t, "expired-token", sid.Value)

	_, err := store.SelectByToken(ctx, "expired-token")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestMiddleware_UnknownCookie(t *testing.T) {
	t.Parallel()

	h := session.New().Middleware(counter())

	rec := serve(h, http.MethodGet, &http.Cookie{Name: "sid", Value: "forged"})
	assert.Equal(t, "new", rec.Header().Get("X-State"))
	sid := findCookie(rec, "sid")
	require.NotNil(t, sid)
	assert.NotEqual(t, "forged", sid.Value)
}

func TestMiddleware_CommitBeforeBody(t *testing.T) {
	t.Parallel()

	manager := session.New()
	h := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("body"))
		// Changes after the first byte are not persisted.
		session.MustFromContext(r.Context()).Set("late", true)
	}))

	rec := serve(h, http.MethodGet)
	assert.Equal(t, "body", rec.Body.String())
	sid := findCookie(rec, "sid")
	require.NotNil(t, sid)

	sess, _, err := manager.Resume(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), sid.Value)
	require.NoError(t, err)
	_, ok := sess.Get("late")
	assert.False(t, ok)
}

func TestMiddleware_CSRF(t *testing.T) {
	t.Parallel()

	newHandler := func(guard *stubGuard, action session.FailAction) (http.Handler, *bool) {
		cfg := session.DefaultConfig()
		cfg.CSRFFailAction = action
		manager := session.NewFromConfig(cfg, session.WithCSRF(guard))

		called := new(bool)
		return manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*called = true
			w.WriteHeader(http.StatusOK)
		})), called
	}

	t.Run("new session on safe method skips the check", func(t *testing.T) {
		t.Parallel()

		guard := &stubGuard{}
		h, called := newHandler(guard, session.FailActionFail)

		rec := serve(h, http.MethodGet)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
		assert.Zero(t, guard.checked)
		assert.Positive(t, guard.prepared)
		assert.Equal(t, 1, guard.issued)
		assert.NotNil(t, findCookie(rec, "csrf_token"))
	})

	t.Run("new session on post is rejected", func(t *testing.T) {
		t.Parallel()

		guard := &stubGuard{}
		h, called := newHandler(guard, session.FailActionFail)

		rec := serve(h, http.MethodPost)
		assert.Equal(t, http.StatusNotAcceptable, rec.Code)
		assert.False(t, *called)
		assert.Equal(t, 1, guard.checked)
		assert.NotNil(t, findCookie(rec, "sid"), "the new session still gets its cookie")
	})

	t.Run("resumed session on get is checked", func(t *testing.T) {
		t.Parallel()

		guard := &stubGuard{pass: true}
		h, _ := newHandler(guard, session.FailActionFail)

		sid := findCookie(serve(h, http.MethodGet), "sid")
		require.NotNil(t, sid)

		rec := serve(h, http.MethodGet, sid)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, guard.checked)
	})

	t.Run("passing check", func(t *testing.T) {
		t.Parallel()

		guard := &stubGuard{pass: true}
		h, called := newHandler(guard, session.FailActionFail)

		rec := serve(h, http.MethodPost)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, *called)
	})

	for _, action := range []session.FailAction{session.FailActionLog, session.FailActionSilent} {
		t.Run("failing check with action "+string(action), func(t *testing.T) {
			t.Parallel()

			guard := &stubGuard{}
			h, called := newHandler(guard, action)

			rec := serve(h, http.MethodDelete)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.True(t, *called)
			assert.Equal(t, 1, guard.checked)
		})
	}

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		guard := &stubGuard{}
		cfg := session.DefaultConfig()
		cfg.CSRFEnabled = false
		h := session.NewFromConfig(cfg, session.WithCSRF(guard)).Middleware(counter())

		rec := serve(h, http.MethodPost)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, guard.checked)
		assert.Zero(t, guard.issued)
		assert.Nil(t, findCookie(rec, "csrf_token"))
	})
}

func TestMiddleware_Logout(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	manager := session.New(session.WithStore(store))

	login := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).SetUserID("user-1")
	}))
	logout := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, manager.Logout(r.Context(), w))
		w.WriteHeader(http.StatusNoContent)
	}))

	sid := findCookie(serve(login, http.MethodGet), "sid")
	require.NotNil(t, sid)
	require.Equal(t, 1, store.Len())

	rec := serve(logout, http.MethodGet, sid)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())

	sids := 0
	for _, c := range rec.Result().Cookies() {
		if c.Name == "sid" {
			sids++
			assert.Equal(t, -1, c.MaxAge, "only the expiring cookie is sent")
		}
	}
	assert.Equal(t, 1, sids)
}

func TestMiddleware_SignedCookies(t *testing.T) {
	t.Parallel()

	cookies, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	manager := session.New(session.WithCookieManager(cookies))
	h := manager.Middleware(counter())

	first := serve(h, http.MethodGet)
	sid := findCookie(first, "sid")
	require.NotNil(t, sid)

	second := serve(h, http.MethodGet, sid)
	assert.Equal(t, "resume", second.Header().Get("X-State"))

	// A raw token without a valid signature is not accepted.
	token, err := cookies.GetSigned(func() *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(sid)
		return r
	}(), "sid")
	require.NoError(t, err)

	third := serve(h, http.MethodGet, &http.Cookie{Name: "sid", Value: token})
	assert.Equal(t, "new", third.Header().Get("X-State"))
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	manager := session.New()
	protected := manager.Middleware(manager.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := session.UserIDFromContext(r.Context())
		w.Header().Set("X-User-ID", userID)
	})))
	login := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session.MustFromContext(r.Context()).SetUserID("user-1")
	}))

	anonymous := serve(protected, http.MethodGet)
	assert.Equal(t, http.StatusUnauthorized, anonymous.Code)

	sid := findCookie(serve(login, http.MethodGet), "sid")
	require.NotNil(t, sid)

	rec := serve(protected, http.MethodGet, sid)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Header().Get("X-User-ID"))
}

func TestMiddleware_Concurrent(t *testing.T) {
	t.Parallel()

	store := session.NewMemoryStore()
	manager := session.New(session.WithStore(store))
	h := manager.Middleware(counter())

	shared := findCookie(serve(h, http.MethodGet), "sid")
	require.NotNil(t, shared)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan *httptest.ResponseRecorder, 2*workers)
	for range workers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			results <- serve(h, http.MethodGet, shared)
		}()
		go func() {
			defer wg.Done()
			results <- serve(h, http.MethodGet)
		}()
	}
	wg.Wait()
	close(results)

	for rec := range results {
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, findCookie(rec, "sid"))
	}

	// One shared session plus one per fresh request.
	assert.Equal(t, workers+1, store.Len())

	sess, _, err := manager.Resume(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil), shared.Value)
	require.NoError(t, err)
	n, ok := sess.GetInt("n")
	require.True(t, ok)
	// Concurrent increments overwrite each other; the stored value is one
	// request's result, never more than the number of requests.
	assert.GreaterOrEqual(t, n, 2)
	assert.LessOrEqual(t, n, workers+1)
}

func TestMiddleware_LogoutExpiresCSRFCookie(t *testing.T) {
	t.Parallel()

	guard := &stubGuard{pass: true}
	manager := session.New(session.WithCSRF(guard))

	h := manager.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, manager.Logout(r.Context(), w))
		w.WriteHeader(http.StatusNoContent)
	}))

	sid := findCookie(serve(manager.Middleware(counter()), http.MethodGet), "sid")
	require.NotNil(t, sid)
	issuedBefore := guard.issued

	rec := serve(h, http.MethodPost, sid)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 1, guard.expired)
	assert.Equal(t, issuedBefore, guard.issued, "no fresh token after logout")

	csrfCookie := findCookie(rec, "csrf_token")
	require.NotNil(t, csrfCookie)
	assert.Equal(t, -1, csrfCookie.MaxAge)
}
