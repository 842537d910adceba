package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieSetter(t *testing.T) {
	t.Run("SetCookie", func(t *testing.T) {
		setter := NewCookieSetter(false)
		rec := httptest.NewRecorder()
		expire := time.Now().Add(DefaultSessionTTL)

		err := setter.SetCookie(rec, CookieName, "token-value", expire)
		require.NoError(t, err)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, CookieName, cookie.Name)
		assert.Equal(t, "token-value", cookie.Value)
		assert.Equal(t, "/", cookie.Path)
		assert.True(t, cookie.HttpOnly)
		assert.False(t, cookie.Secure)
		assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		assert.WithinDuration(t, expire, cookie.Expires, time.Second)
	})

	t.Run("ClearCookie", func(t *testing.T) {
		setter := NewCookieSetter(false)
		rec := httptest.NewRecorder()

		err := setter.ClearCookie(rec, CookieName)
		require.NoError(t, err)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		cookie := cookies[0]
		assert.Equal(t, CookieName, cookie.Name)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	})

	t.Run("ProductionPolicy", func(t *testing.T) {
		setter := NewCookieSetter(true)
		rec := httptest.NewRecorder()

		err := setter.SetCookie(rec, CookieName, "token-value", time.Now().Add(time.Hour))
		require.NoError(t, err)

		cookie := rec.Result().Cookies()[0]
		assert.True(t, cookie.Secure)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	})
}
