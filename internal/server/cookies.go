package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName identifies the browser, not a login.
	CookieName = "advisor_browser"
	// CookieMaxAge keeps the browser id (and so its stored profile) for a year
	CookieMaxAge = 365 * 24 * time.Hour
	// BrowserIDHeader is accepted when cookies are unavailable and echoed on
	// every response.
	BrowserIDHeader = "X-Browser-Id"
)

// SetBrowserCookie sets the long-lived, HTTP-only browser id cookie.
func SetBrowserCookie(w http.ResponseWriter, browserID string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    browserID,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
}

// getBrowserID reads the id from the cookie, then the header. Anything that
// is not a UUID is ignored so clients cannot pick arbitrary storage keys.
func getBrowserID(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}
	if h := r.Header.Get(BrowserIDHeader); h != "" {
		if id, err := uuid.Parse(h); err == nil {
			return id.String()
		}
	}
	return ""
}

// getOrCreateBrowserID returns the caller's browser id, issuing a new one
// (and its cookie) on first contact.
func getOrCreateBrowserID(w http.ResponseWriter, r *http.Request, secure bool) string {
	id := getBrowserID(r)
	if id == "" {
		id = uuid.NewString()
		SetBrowserCookie(w, id, secure)
	}
	w.Header().Set(BrowserIDHeader, id)
	return id
}
