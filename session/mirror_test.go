package session_test

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-cv-session/session"
	"github.com/jrsteele09/go-cv-session/token"
	"github.com/stretchr/testify/require"
)

func TestRequestMirror(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/fran", nil)
	for _, c := range (token.Tokens{IDToken: "a", AccessToken: "b", RefreshToken: "c"}).Cookies(token.CookieOptions{}) {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	m := session.NewRequestMirror(rec, req, token.CookieOptions{SameSite: token.SameSiteStrict})

	require.Equal(t, token.Tokens{IDToken: "a", AccessToken: "b", RefreshToken: "c"}, m.Read())

	next := token.Tokens{IDToken: "x", AccessToken: "y", RefreshToken: "z"}
	require.NoError(t, m.Write(next))
	require.Equal(t, next, m.Read())
	require.Equal(t, next, token.FromCookies(rec.Result().Cookies()))
	for _, sc := range rec.Header().Values("Set-Cookie") {
		require.Contains(t, sc, "SameSite=Strict")
	}

	require.NoError(t, m.Clear())
	require.True(t, m.Read().IsZero())
	require.Len(t, rec.Header().Values("Set-Cookie"), 6)
}

func TestJarMirror(t *testing.T) {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	origin, _ := url.Parse("https://cv.example.com/")
	m := session.NewJarMirror(jar, origin, token.CookieOptions{})

	require.True(t, m.Read().IsZero())

	tokens := token.Tokens{IDToken: "a", AccessToken: "b", RefreshToken: "c"}
	require.NoError(t, m.Write(tokens))
	require.Equal(t, tokens, m.Read())

	require.NoError(t, m.Clear())
	require.True(t, m.Read().IsZero())
}
