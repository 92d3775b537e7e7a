package server_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-cv-session/exchange"
	"github.com/jrsteele09/go-cv-session/internal/config"
	"github.com/jrsteele09/go-cv-session/internal/testutil"
	"github.com/jrsteele09/go-cv-session/server"
	"github.com/jrsteele09/go-cv-session/token"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	domain     string
	chatURL    string
	logoutURI  string
	redirectTo string
	issuer     string
}

func (c testConfig) GetPort() string                 { return ":0" }
func (c testConfig) GetAppName() string              { return "CV Session" }
func (c testConfig) GetEnv() string                  { return "TEST" }
func (c testConfig) GetHTTPTimeout() time.Duration   { return 5 * time.Second }
func (c testConfig) GetAllowedMethods() string       { return "GET, POST, OPTIONS" }
func (c testConfig) GetAllowedHeaders() string       { return "Content-Type, Authorization" }
func (c testConfig) GetCognitoDomain() string        { return c.domain }
func (c testConfig) GetClientID() string             { return "client-1" }
func (c testConfig) GetClientSecret() string         { return "secret-1" }
func (c testConfig) GetRedirectURI() string          { return "http://localhost:3000/auth/callback" }
func (c testConfig) GetLogoutURI() string            { return c.logoutURI }
func (c testConfig) GetIssuer() string               { return c.issuer }
func (c testConfig) GetPostLoginRedirectURL() string { return c.redirectTo }
func (c testConfig) GetCookieSameSite() string       { return "" }
func (c testConfig) GetChatBackendURL() string       { return c.chatURL }
func (c testConfig) GetAllowedOrigins() config.AllowedOrigins {
	return config.ParseAllowedOrigins("http://localhost:3000")
}

// fakeProvider serves the identity provider's token endpoint and the chatbot
// backend from one TLS server, so one http.Client trusts both.
type fakeProvider struct {
	tokenCalls atomic.Int32
	idToken    string
	chatFails  atomic.Bool

	// set for OIDC discovery
	issuer string
	key    *rsa.PrivateKey
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/.well-known/openid-configuration":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"issuer":                                p.issuer,
			"authorization_endpoint":                p.issuer + "/oauth2/authorize",
			"token_endpoint":                        p.issuer + "/oauth2/token",
			"jwks_uri":                              p.issuer + "/jwks",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	case "/jwks":
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
			Key:       p.key.Public(),
			KeyID:     "k1",
			Algorithm: string(jose.RS256),
			Use:       "sig",
		}}})
	case "/oauth2/token":
		p.tokenCalls.Add(1)
		_ = r.ParseForm()
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id_token":      p.idToken,
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
			"token_type":    "Bearer",
			"expires_in":    3600,
		})
	case "/chatbot":
		if p.chatFails.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"botReply": "echo: " + r.URL.Query().Get("message")})
	default:
		http.NotFound(w, r)
	}
}

type harness struct {
	srv      *server.Server
	provider *fakeProvider
	domain   string
}

func newHarness(t *testing.T, opts ...server.Option) *harness {
	t.Helper()
	provider := &fakeProvider{idToken: testutil.FreshIDToken(t)}
	idp := httptest.NewTLSServer(provider)
	t.Cleanup(idp.Close)

	domain := strings.TrimPrefix(idp.URL, "https://")
	cfg := testConfig{
		domain:     domain,
		chatURL:    idp.URL + "/chatbot",
		logoutURI:  "http://localhost:3000/",
		redirectTo: "http://localhost:3000/cb",
	}
	srv, err := server.New(cfg, append([]server.Option{server.WithHTTPClient(idp.Client())}, opts...)...)
	require.NoError(t, err)
	return &harness{srv: srv, provider: provider, domain: domain}
}

// newVerifyingHarness configures an issuer, so the server discovers the
// provider's keys and verifies every ID token it receives.
func newVerifyingHarness(t *testing.T) *harness {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	provider := &fakeProvider{key: key}
	idp := httptest.NewTLSServer(provider)
	t.Cleanup(idp.Close)
	provider.issuer = idp.URL
	provider.idToken = signedIDToken(t, key, idp.URL)

	domain := strings.TrimPrefix(idp.URL, "https://")
	cfg := testConfig{domain: domain, issuer: idp.URL, redirectTo: "http://localhost:3000/cb"}
	srv, err := server.New(cfg, server.WithHTTPClient(idp.Client()))
	require.NoError(t, err)
	return &harness{srv: srv, provider: provider, domain: domain}
}

func signedIDToken(t *testing.T, key *rsa.PrivateKey, issuer string) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, jwtlib.MapClaims{
		"iss": issuer,
		"aud": "client-1",
		"sub": "user-1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tok.Header["kid"] = "k1"
	raw, err := tok.SignedString(key)
	require.NoError(t, err)
	return raw
}

func (h *harness) do(t *testing.T, method, target string, cookies []*http.Cookie, body string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	return rec.Result()
}

func sessionCookies(idToken string) []*http.Cookie {
	return token.Tokens{IDToken: idToken, AccessToken: "access-1", RefreshToken: "refresh-1"}.Cookies(token.CookieOptions{})
}

func cookieMap(resp *http.Response) map[string]*http.Cookie {
	m := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		m[c.Name] = c
	}
	return m
}

func TestSignIn(t *testing.T) {
	t.Run("anonymous goes to hosted login", func(t *testing.T) {
		h := newHarness(t)
		resp := h.do(t, http.MethodGet, server.RouteSignIn, nil, "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t,
			"https://"+h.domain+"/login?response_type=code&client_id=client-1&redirect_uri=http%3A%2F%2Flocalhost%3A3000%2Fauth%2Fcallback",
			resp.Header.Get("Location"))
	})

	t.Run("signed in user goes to private page", func(t *testing.T) {
		h := newHarness(t)
		resp := h.do(t, http.MethodGet, server.RouteSignIn, sessionCookies(testutil.FreshIDToken(t)), "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, server.RoutePrivate, resp.Header.Get("Location"))
	})

	t.Run("expired session goes to hosted login", func(t *testing.T) {
		h := newHarness(t)
		resp := h.do(t, http.MethodGet, server.RouteSignIn, sessionCookies(testutil.ExpiredIDToken(t)), "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Contains(t, resp.Header.Get("Location"), "/login?")
	})

	t.Run("missing configuration", func(t *testing.T) {
		srv, err := server.New(testConfig{})
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteSignIn, nil))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), "Authentication is not configured")
	})
}

func TestLoginFlow(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, server.RouteCallback+"?code=good-code", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RoutePrivate, resp.Header.Get("Location"))

	cookies := cookieMap(resp)
	require.Len(t, cookies, 3)
	require.Equal(t, h.provider.idToken, cookies[token.IDTokenCookie].Value)
	require.Equal(t, "access-1", cookies[token.AccessTokenCookie].Value)
	require.Equal(t, "refresh-1", cookies[token.RefreshTokenCookie].Value)
	for _, c := range cookies {
		require.True(t, c.HttpOnly)
		require.True(t, c.Secure)
		require.Equal(t, "/", c.Path)
	}

	page := h.do(t, http.MethodGet, server.RoutePrivate, resp.Cookies(), "")
	require.Equal(t, http.StatusOK, page.StatusCode)
	require.Equal(t, "no-store", page.Header.Get("Cache-Control"))

	t.Run("code is used once", func(t *testing.T) {
		again := h.do(t, http.MethodGet, server.RouteCallback+"?code=good-code", nil, "")
		require.Equal(t, http.StatusUnauthorized, again.StatusCode)
		require.EqualValues(t, 1, h.provider.tokenCalls.Load())
	})

	t.Run("cb without code keeps a valid session", func(t *testing.T) {
		cb := h.do(t, http.MethodGet, server.RouteCallbackAlt, resp.Cookies(), "")
		require.Equal(t, http.StatusFound, cb.StatusCode)
		require.Equal(t, server.RoutePrivate, cb.Header.Get("Location"))
	})
}

func TestCallbackWithDiscoveredKeys(t *testing.T) {
	h := newVerifyingHarness(t)

	resp := h.do(t, http.MethodGet, server.RouteCallback+"?code=good-code", nil, "")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, server.RoutePrivate, resp.Header.Get("Location"))
	require.Equal(t, h.provider.idToken, cookieMap(resp)[token.IDTokenCookie].Value)

	page := h.do(t, http.MethodGet, server.RoutePrivate, resp.Cookies(), "")
	require.Equal(t, http.StatusOK, page.StatusCode)
}

func TestCallbackFailures(t *testing.T) {
	t.Run("rejected code", func(t *testing.T) {
		h := newHarness(t)
		resp := h.do(t, http.MethodGet, server.RouteCallback+"?code=bad-code", nil, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Empty(t, resp.Cookies())
	})

	t.Run("provider error", func(t *testing.T) {
		h := newHarness(t)
		resp := h.do(t, http.MethodGet, server.RouteCallback+"?error=access_denied", nil, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Zero(t, h.provider.tokenCalls.Load())
	})

	t.Run("no code and no session", func(t *testing.T) {
		h := newHarness(t)
		resp := h.do(t, http.MethodGet, server.RouteCallbackAlt, nil, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unverifiable id token", func(t *testing.T) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		verifier := exchange.NewStaticVerifier("https://issuer.example.com", "client-1", key.Public())

		h := newHarness(t, server.WithIDTokenVerifier(verifier))
		resp := h.do(t, http.MethodGet, server.RouteCallback+"?code=good-code", nil, "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Empty(t, resp.Cookies())
	})
}

func TestPrivatePage(t *testing.T) {
	h := newHarness(t)

	t.Run("no cookies", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RoutePrivate, nil, "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
	})

	t.Run("expired cookies", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RoutePrivate, sessionCookies(testutil.ExpiredIDToken(t)), "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
	})

	t.Run("malformed id token", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RoutePrivate, sessionCookies("not-a-jwt"), "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, server.RouteHome, resp.Header.Get("Location"))
	})

	t.Run("incomplete cookies", func(t *testing.T) {
		cookies := sessionCookies(testutil.FreshIDToken(t))[:2]
		resp := h.do(t, http.MethodGet, server.RoutePrivate, cookies, "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
	})

	t.Run("frame headers", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RoutePrivate, sessionCookies(testutil.FreshIDToken(t)), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "SAMEORIGIN", resp.Header.Get("X-Frame-Options"))
		require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	resp := h.do(t, http.MethodGet, server.RouteLogout, sessionCookies(testutil.FreshIDToken(t)), "")

	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t,
		"https://"+h.domain+"/logout?client_id=client-1&logout_uri=http%3A%2F%2Flocalhost%3A3000%2F",
		resp.Header.Get("Location"))

	cookies := cookieMap(resp)
	require.Len(t, cookies, 3)
	for _, c := range cookies {
		require.Empty(t, c.Value)
		require.Negative(t, c.MaxAge)
	}

	t.Run("without logout uri", func(t *testing.T) {
		srv, err := server.New(testConfig{domain: "auth.example.com"})
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, server.RouteLogout, nil))
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, server.RouteHome, rec.Header().Get("Location"))
	})
}

func TestRelayRoutes(t *testing.T) {
	h := newHarness(t)
	idToken := testutil.FreshIDToken(t)

	t.Run("get", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RouteGetToken, sessionCookies(idToken), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got token.Tokens
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		require.Equal(t, idToken, got.IDToken)
	})

	t.Run("set", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RouteSetToken, sessionCookies(idToken), "")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "http://localhost:3000/cb", resp.Header.Get("Location"))
		require.Len(t, resp.Cookies(), 3)
	})

	t.Run("clear", func(t *testing.T) {
		resp := h.do(t, http.MethodPost, server.RouteClearToken, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, resp.Cookies(), 3)
	})
}

func TestChat(t *testing.T) {
	h := newHarness(t)
	cookies := sessionCookies(testutil.FreshIDToken(t))

	t.Run("anonymous", func(t *testing.T) {
		resp := h.do(t, http.MethodPost, server.RouteAPIChat, nil, `{"message":"hi"}`)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("reply", func(t *testing.T) {
		resp := h.do(t, http.MethodPost, server.RouteAPIChat, cookies, `{"message":"hi"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			BotReply string `json:"botReply"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "echo: hi", body.BotReply)
	})

	t.Run("empty message", func(t *testing.T) {
		resp := h.do(t, http.MethodPost, server.RouteAPIChat, cookies, `{"message":"  "}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("backend down", func(t *testing.T) {
		h.provider.chatFails.Store(true)
		defer h.provider.chatFails.Store(false)

		resp := h.do(t, http.MethodPost, server.RouteAPIChat, cookies, `{"message":"hi"}`)
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)

		var body struct {
			BotReply string `json:"botReply"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Equal(t, "Sorry, I'm having trouble understanding that.", body.BotReply)
	})
}

func TestCors(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequestWithContext(context.Background(), http.MethodOptions, server.RouteAPIChat, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, server.RouteAPIChat, nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.srv.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestPages(t *testing.T) {
	h := newHarness(t)

	t.Run("home", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RouteHome, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "<title>CV Session</title>")
		require.Contains(t, string(body), `href="/signin"`)
	})

	t.Run("private page starts with the greeting", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, server.RoutePrivate, sessionCookies(testutil.FreshIDToken(t)), "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), "Ask me anything you&#39;d expect to learn from a cv...")
	})

	t.Run("unknown path", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, "/nope", nil, "")
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
