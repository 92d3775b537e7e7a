package token

import (
	"net/http"
	"strings"
)

// SameSite selects the SameSite attribute written on token cookies.
type SameSite string

const (
	// SameSiteUnset omits the attribute.
	SameSiteUnset  SameSite = ""
	SameSiteStrict SameSite = "Strict"
	// SameSiteNone is needed when the cookies are set during the cross-site OAuth handoff.
	SameSiteNone SameSite = "None"
)

// ParseSameSite maps a configuration value onto a SameSite mode; unknown values unset it.
func ParseSameSite(v string) SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return SameSiteStrict
	case "none":
		return SameSiteNone
	default:
		return SameSiteUnset
	}
}

func (s SameSite) httpMode() http.SameSite {
	switch s {
	case SameSiteStrict:
		return http.SameSiteStrictMode
	case SameSiteNone:
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}

type CookieOptions struct {
	SameSite SameSite
}

// SerializeForCookie builds an HttpOnly, Secure cookie scoped to Path=/.
func SerializeForCookie(name, value string, opts CookieOptions) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: opts.SameSite.httpMode(),
	}
}

// ClearDirective builds a cookie that makes the browser delete name immediately
// (empty value, Max-Age=0).
func ClearDirective(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		MaxAge:   -1,
	}
}

// Directive renders the Set-Cookie header value for c.
func Directive(c *http.Cookie) string {
	return c.String()
}

// Cookies returns the TokenCookieSet for t in idToken, accessToken, refreshToken order.
func (t Tokens) Cookies(opts CookieOptions) []*http.Cookie {
	return []*http.Cookie{
		SerializeForCookie(IDTokenCookie, t.IDToken, opts),
		SerializeForCookie(AccessTokenCookie, t.AccessToken, opts),
		SerializeForCookie(RefreshTokenCookie, t.RefreshToken, opts),
	}
}

// ClearCookies returns the three expiring directives of the TokenCookieSet.
func ClearCookies() []*http.Cookie {
	return []*http.Cookie{
		ClearDirective(IDTokenCookie),
		ClearDirective(AccessTokenCookie),
		ClearDirective(RefreshTokenCookie),
	}
}

// FromCookies picks the TokenCookieSet out of cookies. Empty values count as absent.
func FromCookies(cookies []*http.Cookie) Tokens {
	var t Tokens
	for _, c := range cookies {
		if c == nil || c.Value == "" {
			continue
		}
		switch c.Name {
		case IDTokenCookie:
			t.IDToken = c.Value
		case AccessTokenCookie:
			t.AccessToken = c.Value
		case RefreshTokenCookie:
			t.RefreshToken = c.Value
		}
	}
	return t
}
