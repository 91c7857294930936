package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pgsession/pkg/cookie"
)

const (
	secretA = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	secretB = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// roundTrip replays the cookies set on rec into a new request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("without secrets", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(nil)
		require.NoError(t, err)
		assert.False(t, m.CanSign())
	})

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New([]string{"short"})
		assert.ErrorIs(t, err, cookie.ErrSecretTooShort)
	})

	t.Run("empty secrets are skipped", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New([]string{"", secretA})
		require.NoError(t, err)
		assert.True(t, m.CanSign())
	})

	t.Run("from config", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.NewFromConfig(cookie.Config{Secrets: " " + secretA + " , " + secretB})
		require.NoError(t, err)
		assert.True(t, m.CanSign())

		m, err = cookie.NewFromConfig(cookie.Config{})
		require.NoError(t, err)
		assert.False(t, m.CanSign())
	})
}

func TestManager_SetGet(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(nil, cookie.WithSecure(true))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, m.Set(rec, "sid", "token-value", cookie.WithMaxAge(60)))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "token-value", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 60, c.MaxAge)
	assert.False(t, c.Expires.IsZero())
	assert.True(t, c.Secure)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)

	value, err := m.Get(roundTrip(rec), "sid")
	require.NoError(t, err)
	assert.Equal(t, "token-value", value)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "sid")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)

	assert.ErrorIs(t, m.Set(httptest.NewRecorder(), "", "v"), cookie.ErrEmptyName)
}

func TestManager_Delete(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Delete(rec, "sid", cookie.WithPath("/app"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, "/app", cookies[0].Path)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestManager_Signed(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New([]string{secretA})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "sid", "token-value"))
		assert.NotContains(t, rec.Header().Get("Set-Cookie"), "token-value")

		value, err := m.GetSigned(roundTrip(rec), "sid")
		require.NoError(t, err)
		assert.Equal(t, "token-value", value)
	})

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New([]string{secretA})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, m.SetSigned(rec, "sid", "token-value"))
		signed := rec.Result().Cookies()[0].Value
		encoded, signature, ok := strings.Cut(signed, ".")
		require.True(t, ok)

		first := "A"
		if signature[0] == 'A' {
			first = "B"
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: encoded + "." + first + signature[1:]})
		_, err = m.GetSigned(req, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)

		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "no-separator"})
		_, err = m.GetSigned(req, "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidFormat)
	})

	t.Run("key rotation", func(t *testing.T) {
		t.Parallel()

		old, err := cookie.New([]string{secretA})
		require.NoError(t, err)
		rotated, err := cookie.New([]string{secretB, secretA})
		require.NoError(t, err)
		other, err := cookie.New([]string{secretB})
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		require.NoError(t, old.SetSigned(rec, "sid", "token-value"))

		value, err := rotated.GetSigned(roundTrip(rec), "sid")
		require.NoError(t, err)
		assert.Equal(t, "token-value", value)

		_, err = other.GetSigned(roundTrip(rec), "sid")
		assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
	})

	t.Run("without secrets", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(nil)
		require.NoError(t, err)

		assert.ErrorIs(t, m.SetSigned(httptest.NewRecorder(), "sid", "v"), cookie.ErrNoSecret)
		_, err = m.GetSigned(httptest.NewRequest(http.MethodGet, "/", nil), "sid")
		assert.ErrorIs(t, err, cookie.ErrNoSecret)
	})
}
