// Package relay implements the stateless functions that move tokens between
// HttpOnly cookies, which page scripts cannot read, and JSON response bodies.
package relay

import (
	"net/http"

	"github.com/jrsteele09/go-cv-session/token"
)

const (
	msgNotAuthenticated = "Not authenticated"
	msgRedirecting      = "Redirecting after authentication"
	msgLoggedOut        = "Logged out successfully"
)

// Response is the outcome of a relay function, independent of any transport.
type Response struct {
	Status   int
	Location string
	Cookies  []*http.Cookie
	Body     any
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

func notAuthenticated() Response {
	return Response{
		Status: http.StatusUnauthorized,
		Body:   errorBody{Error: msgNotAuthenticated},
	}
}

// Set stores the tokens as the TokenCookieSet and redirects to redirectURL.
// Without all three tokens it responds 401 and issues no cookies.
func Set(tokens token.Tokens, redirectURL string, opts token.CookieOptions) Response {
	if !tokens.Complete() {
		return notAuthenticated()
	}
	return Response{
		Status:   http.StatusFound,
		Location: redirectURL,
		Cookies:  tokens.Cookies(opts),
		Body:     messageBody{Message: msgRedirecting},
	}
}

// Get hands the TokenCookieSet back as JSON. It does not look at expiry.
func Get(cookies []*http.Cookie) Response {
	tokens := token.FromCookies(cookies)
	if !tokens.Complete() {
		return notAuthenticated()
	}
	return Response{
		Status: http.StatusOK,
		Body:   tokens,
	}
}

// Clear expires the TokenCookieSet. Clearing an empty session succeeds the same way.
func Clear() Response {
	return Response{
		Status:  http.StatusOK,
		Cookies: token.ClearCookies(),
		Body:    messageBody{Message: msgLoggedOut},
	}
}
