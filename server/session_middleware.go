package server

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/jrsteele09/go-cv-session/relay"
	"github.com/jrsteele09/go-cv-session/session"
	"github.com/jrsteele09/go-cv-session/token"
)

// pageNavigator records the first navigation a guard or the store asks for. The
// handler turns it into a redirect once the page logic has run.
type pageNavigator struct {
	mu     sync.Mutex
	target string
}

func (n *pageNavigator) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.target == "" {
		n.target = target
	}
}

func (n *pageNavigator) redirect(w http.ResponseWriter, r *http.Request) bool {
	n.mu.Lock()
	target := n.target
	n.mu.Unlock()
	if target == "" {
		return false
	}
	http.Redirect(w, r, target, http.StatusFound)
	return true
}

// requestStore rebuilds the session for one page load: the mirror is the
// request's cookies, and the token source is the Get relay over those cookies.
func (s *Server) requestStore(w http.ResponseWriter, r *http.Request, opts ...session.Option) *session.Store {
	mirror := session.NewRequestMirror(w, r, s.cookieOpts)
	source := session.SourceFunc(func(ctx context.Context) (token.Tokens, error) {
		return cookieTokens(r)
	})
	return session.New(mirror, source, opts...)
}

func cookieTokens(r *http.Request) (token.Tokens, error) {
	resp := relay.Get(r.Cookies())
	tokens, ok := resp.Body.(token.Tokens)
	if resp.Status != http.StatusOK || !ok {
		return token.Tokens{}, errors.ErrNotAuthenticated
	}
	return tokens, nil
}

// loadSession runs the app-level load for requests that carry token cookies.
// A request without any is simply anonymous.
func loadSession(ctx context.Context, store *session.Store, r *http.Request) {
	if token.FromCookies(r.Cookies()).IsZero() {
		return
	}
	store.LoadTokens(ctx)
}
