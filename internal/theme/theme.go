// Package theme holds the light/dark preference and the places it persists:
// a cookie for the web pages and a TOML file for the terminal browser.
package theme

import (
	"net/http"
	"time"
)

// Theme is the colour scheme preference.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Default applies when nothing valid has been stored.
const Default = Light

// Parse maps a stored value to a Theme. Unknown and empty values give Default.
func Parse(s string) Theme {
	if Theme(s) == Dark {
		return Dark
	}
	return Default
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// IsDark reports whether t is the dark theme.
func (t Theme) IsDark() bool {
	return t == Dark
}

func (t Theme) String() string {
	return string(t)
}

// CookieName is the key the web front end stores the preference under.
const CookieName = "theme"

// FromRequest reads the preference cookie of r.
func FromRequest(r *http.Request) Theme {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Default
	}
	return Parse(c.Value)
}

// SetCookie stores t on the client for a year.
func SetCookie(w http.ResponseWriter, t Theme) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    t.String(),
		Path:     "/",
		Expires:  time.Now().AddDate(1, 0, 0),
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
