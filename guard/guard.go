// Package guard gates pages on the session store.
package guard

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-cv-session/session"
)

// Navigator moves the user to another route.
type Navigator interface {
	Navigate(target string)
}

type NavigatorFunc func(target string)

func (f NavigatorFunc) Navigate(target string) {
	f(target)
}

// Guard is one mounted route policy. It navigates at most once and does nothing
// after Unmount.
type Guard struct {
	mu        sync.Mutex
	store     *session.Store
	target    string
	nav       Navigator
	mounted   bool
	navigated bool
	decide    func(session.Snapshot) bool

	unsubscribe func()
}

func newGuard(store *session.Store, target string, nav Navigator, decide func(session.Snapshot) bool) *Guard {
	g := &Guard{
		store:   store,
		target:  target,
		nav:     nav,
		mounted: true,
		decide:  decide,
	}
	g.unsubscribe = store.Subscribe(g.observe)
	return g
}

// RedirectIfAuthenticated sends an already signed-in user to target, e.g. away
// from the sign-in page. It only observes the store.
func RedirectIfAuthenticated(store *session.Store, target string, nav Navigator) *Guard {
	g := newGuard(store, target, nav, func(st session.Snapshot) bool {
		return st.IsAuthenticated && !st.Loading
	})
	g.observe(store.State())
	return g
}

// RequireAuthenticated loads the session once for this mount unless it is already
// authenticated or loading, and sends the user to target if the settled session
// is not authenticated. The load is never re-triggered by this guard.
func RequireAuthenticated(ctx context.Context, store *session.Store, target string, nav Navigator) *Guard {
	var checked bool
	var checkedMu sync.Mutex
	isChecked := func() bool {
		checkedMu.Lock()
		defer checkedMu.Unlock()
		return checked
	}

	g := newGuard(store, target, nav, func(st session.Snapshot) bool {
		if st.HasError && !st.Loading {
			return true
		}
		return isChecked() && !st.Loading && !st.IsAuthenticated
	})

	st := store.State()
	if !st.IsAuthenticated && !st.Loading {
		store.LoadTokens(ctx)
	}
	checkedMu.Lock()
	checked = true
	checkedMu.Unlock()

	g.observe(store.State())
	return g
}

func (g *Guard) observe(st session.Snapshot) {
	g.mu.Lock()
	if !g.mounted || g.navigated || !g.decide(st) {
		g.mu.Unlock()
		return
	}
	g.navigated = true
	g.mu.Unlock()

	g.nav.Navigate(g.target)
}

// Redirected reports whether the guard has navigated away.
func (g *Guard) Redirected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.navigated
}

// Allowed reports whether the page may render: the guard has not navigated away
// and the session is authenticated and settled.
func (g *Guard) Allowed() bool {
	st := g.store.State()
	return !g.Redirected() && st.IsAuthenticated && !st.Loading
}

// Unmount detaches the guard from the store.
func (g *Guard) Unmount() {
	g.mu.Lock()
	g.mounted = false
	g.mu.Unlock()
	g.unsubscribe()
}
