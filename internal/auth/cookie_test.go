package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetSessionCookie(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	SetSessionCookie(w, "tok", true)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	require.Equal(t, CookieName, c.Name)
	require.Equal(t, "tok", c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
	require.Equal(t, int(TokenTTL.Seconds()), c.MaxAge)
}

func TestClearSessionCookie(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	ClearSessionCookie(w, false)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, CookieName, cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	t.Run("cookie wins over header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "from-cookie"})
		req.Header.Set("Authorization", "Bearer from-header")
		require.Equal(t, "from-cookie", ExtractToken(req))
	})

	t.Run("bearer header fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer from-header")
		require.Equal(t, "from-header", ExtractToken(req))
	})

	t.Run("non-bearer scheme is ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		require.Empty(t, ExtractToken(req))
	})

	t.Run("no credential is anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Empty(t, ExtractToken(req))
	})
}
