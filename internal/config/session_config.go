package config

import "strings"

type SessionConfig interface {
	// GetPostLoginRedirectURL is where the Set relay sends the browser once cookies are stored.
	GetPostLoginRedirectURL() string
	// GetCookieSameSite is "None" (cross-site handoff) or "Strict".
	GetCookieSameSite() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetPostLoginRedirectURL() string {
	return GetEnv("REDIRECT_URL", "http://localhost:3000/cb")
}

func (Session) GetCookieSameSite() string {
	switch strings.ToLower(GetEnv("COOKIE_SAMESITE", "None")) {
	case "strict":
		return "Strict"
	case "none":
		return "None"
	default:
		return ""
	}
}
