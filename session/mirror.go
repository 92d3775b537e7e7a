package session

import (
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-cv-session/token"
)

// Mirror is the cookie copy of the session (the TokenCookieSet).
type Mirror interface {
	Read() token.Tokens
	Write(tokens token.Tokens) error
	Clear() error
}

// RequestMirror is the server-side transport: it reads the request's cookies and
// answers with Set-Cookie headers. Writes made during the request shadow the
// request's cookies for later reads.
type RequestMirror struct {
	r       *http.Request
	w       http.ResponseWriter
	opts    token.CookieOptions
	written *token.Tokens
}

var _ Mirror = (*RequestMirror)(nil)

func NewRequestMirror(w http.ResponseWriter, r *http.Request, opts token.CookieOptions) *RequestMirror {
	return &RequestMirror{r: r, w: w, opts: opts}
}

func (m *RequestMirror) Read() token.Tokens {
	if m.written != nil {
		return *m.written
	}
	return token.FromCookies(m.r.Cookies())
}

func (m *RequestMirror) Write(tokens token.Tokens) error {
	for _, c := range tokens.Cookies(m.opts) {
		m.w.Header().Add("Set-Cookie", token.Directive(c))
	}
	m.written = &tokens
	return nil
}

func (m *RequestMirror) Clear() error {
	for _, c := range token.ClearCookies() {
		m.w.Header().Add("Set-Cookie", token.Directive(c))
	}
	m.written = &token.Tokens{}
	return nil
}

// JarMirror is the client-side transport: the TokenCookieSet lives in a cookie jar
// for origin. Token cookies are Secure, so origin must be an https URL.
type JarMirror struct {
	jar    http.CookieJar
	origin *url.URL
	opts   token.CookieOptions
}

var _ Mirror = (*JarMirror)(nil)

func NewJarMirror(jar http.CookieJar, origin *url.URL, opts token.CookieOptions) *JarMirror {
	return &JarMirror{jar: jar, origin: origin, opts: opts}
}

func (m *JarMirror) Read() token.Tokens {
	return token.FromCookies(m.jar.Cookies(m.origin))
}

func (m *JarMirror) Write(tokens token.Tokens) error {
	m.jar.SetCookies(m.origin, tokens.Cookies(m.opts))
	return nil
}

func (m *JarMirror) Clear() error {
	m.jar.SetCookies(m.origin, token.ClearCookies())
	return nil
}
