package http

import (
	"net/http"
	"time"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type CookieOptions struct {
	Secure bool
}

func SetAuthCookies(w http.ResponseWriter, opts CookieOptions, accessToken string, accessExp time.Time, refreshToken string, refreshExp time.Time) {
	http.SetCookie(w, authCookie(opts, AccessTokenCookie, accessToken, accessExp))
	http.SetCookie(w, authCookie(opts, RefreshTokenCookie, refreshToken, refreshExp))
}

func ClearAuthCookies(w http.ResponseWriter, opts CookieOptions) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		c := authCookie(opts, name, "", time.Unix(0, 0))
		c.MaxAge = -1
		http.SetCookie(w, c)
	}
}

func authCookie(opts CookieOptions, name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
