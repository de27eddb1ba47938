package utils

import (
	"net/http"
	"time"
)

// TokenCookieName is the cookie carrying the access token for web
// clients. API clients send the same token as a Bearer header instead.
const TokenCookieName = "token"

// SetAuthCookie writes the session cookie. When the backend and the
// frontend run on different origins (deployed mode) the cookie must be
// SameSite=None + Secure; local development uses Lax without Secure.
func SetAuthCookie(w http.ResponseWriter, token string, ttl time.Duration, localMode bool) {
	c := &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
	}
	if localMode {
		c.SameSite = http.SameSiteLaxMode
	} else {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	http.SetCookie(w, c)
}

// ClearAuthCookie expires the session cookie.
func ClearAuthCookie(w http.ResponseWriter, localMode bool) {
	c := &http.Cookie{
		Name:     TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
	}
	if localMode {
		c.SameSite = http.SameSiteLaxMode
	} else {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	http.SetCookie(w, c)
}
