package token

import (
	"net/http"
	"time"
)

// CookieName is the transport credential carrying the session token.
const CookieName = "token"

// CookieSetter interface defines methods for cookie operations
type CookieSetter interface {
	// SetCookie sets a cookie with the given value and expiry
	SetCookie(w http.ResponseWriter, name, value string, expire time.Time) error

	// ClearCookie clears a cookie
	ClearCookie(w http.ResponseWriter, name string) error
}

// BaseCookieSetter provides a base implementation of CookieSetter
type BaseCookieSetter struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
}

// SetCookie sets a cookie with the given value and expiry
func (c *BaseCookieSetter) SetCookie(w http.ResponseWriter, name, value string, expire time.Time) error {
	cookie := &http.Cookie{
		Name:     name,
		Path:     c.Path,
		Value:    value,
		Expires:  expire,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}

	http.SetCookie(w, cookie)
	return nil
}

// ClearCookie clears a cookie
func (c *BaseCookieSetter) ClearCookie(w http.ResponseWriter, name string) error {
	cookie := &http.Cookie{
		Name:     name,
		Path:     c.Path,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: c.HttpOnly,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}

	http.SetCookie(w, cookie)
	return nil
}

// NewCookieSetter creates a cookie setter for the session cookie. In
// production the cookie is Secure with SameSite=None so a cross-origin
// frontend can carry it; otherwise SameSite=Strict.
func NewCookieSetter(production bool) CookieSetter {
	sameSite := http.SameSiteStrictMode
	if production {
		sameSite = http.SameSiteNoneMode
	}
	return &BaseCookieSetter{
		Path:     "/",
		HttpOnly: true,
		Secure:   production,
		SameSite: sameSite,
	}
}
