// Package session holds the client-side session state machine:
// Anonymous -> Loading -> {Authenticated, AnonymousWithError}, with
// Authenticated -> Loading on reload and -> Anonymous on clear.
//
// A Store is safe for concurrent use. The Loading flag is the only guard against
// overlapping loads; separate Stores sharing one cookie store race, and the last
// write to the cookies wins.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/jrsteele09/go-cv-session/token"
	"github.com/rs/zerolog/log"
)

// TokenSource is the Get relay: it produces the TokenCookieSet when the mirror has
// no usable copy. It may refresh tokens upstream; the store does not care.
type TokenSource interface {
	FetchTokens(ctx context.Context) (token.Tokens, error)
}

type SourceFunc func(ctx context.Context) (token.Tokens, error)

func (f SourceFunc) FetchTokens(ctx context.Context) (token.Tokens, error) {
	return f(ctx)
}

// Logout expires the session outside the store, e.g. the Clear relay.
type Logout interface {
	ClearSession(ctx context.Context) error
}

type Store struct {
	mu     sync.Mutex
	state  Snapshot
	mirror Mirror
	source TokenSource
	logout Logout

	logoutURL string
	navigate  func(target string)

	subscribers map[int]func(Snapshot)
	nextSubID   int

	// generation moves on every SetTokens and ClearTokens. A load only lands its
	// result if the generation it started under is still current.
	generation uint64
}

type Option func(*Store)

// WithLogout runs l during ClearTokens, after the mirror is cleared.
func WithLogout(l Logout) Option {
	return func(s *Store) {
		s.logout = l
	}
}

// WithLogoutRedirect navigates to the identity provider's logout page once
// ClearTokens has cleared cookies and local state.
func WithLogoutRedirect(logoutURL string, navigate func(target string)) Option {
	return func(s *Store) {
		s.logoutURL = logoutURL
		s.navigate = navigate
	}
}

// New returns an empty (Anonymous) store.
func New(mirror Mirror, source TokenSource, opts ...Option) *Store {
	s := &Store{
		mirror:      mirror,
		source:      source,
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn with a snapshot after every state change. fn runs on the
// goroutine that made the change and must not block.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// LoadTokens populates the session from the cookie mirror, falling back to the
// token source. It returns immediately when a load is already in flight. Failures
// end in AnonymousWithError; they are logged, never returned.
func (s *Store) LoadTokens(ctx context.Context) {
	s.mu.Lock()
	if s.state.Loading {
		s.mu.Unlock()
		return
	}
	s.state.Loading = true
	gen := s.generation
	snap := s.state
	cached := s.mirror.Read()
	s.mu.Unlock()
	s.notify(snap)

	if cached.Complete() && !token.IsExpired(cached.IDToken) {
		s.settle(gen, func(st *Snapshot) {
			st.IDToken, st.AccessToken, st.RefreshToken = cached.IDToken, cached.AccessToken, cached.RefreshToken
			st.IsAuthenticated = true
			st.HasError = false
		})
		return
	}

	fetched, err := s.fetch(ctx)
	if err != nil {
		log.Err(err).Msg("Session load failed")
		s.settle(gen, func(st *Snapshot) {
			*st = Snapshot{HasError: true}
		})
		return
	}

	if s.adopt(fetched, &gen) {
		return
	}
	s.settle(gen, func(*Snapshot) {})
}

// settle ends a load started under gen. If SetTokens or ClearTokens ran in the
// meantime their outcome stands and only Loading is cleared.
func (s *Store) settle(gen uint64, mutate func(*Snapshot)) {
	s.apply(func(st *Snapshot) {
		if s.generation == gen {
			mutate(st)
		}
		st.Loading = false
	})
}

func (s *Store) fetch(ctx context.Context) (tokens token.Tokens, err error) {
	if s.source == nil {
		return token.Tokens{}, errors.ErrNotAuthenticated
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("[Store fetch] token source panicked: %v", r)
		}
	}()

	tokens, err = s.source.FetchTokens(ctx)
	if err != nil {
		return token.Tokens{}, err
	}
	if !tokens.Complete() {
		return token.Tokens{}, fmt.Errorf("[Store fetch] %w: incomplete token set", errors.ErrNotAuthenticated)
	}
	if token.IsExpired(tokens.IDToken) {
		return token.Tokens{}, fmt.Errorf("[Store fetch] %w", errors.ErrTokenExpired)
	}
	return tokens, nil
}

// SetTokens adopts a token triple, typically straight after a code exchange.
// Setting the triple already held is a no-op: state and cookies are left alone.
func (s *Store) SetTokens(idToken, accessToken, refreshToken string) error {
	tokens := token.Tokens{IDToken: idToken, AccessToken: accessToken, RefreshToken: refreshToken}
	if !tokens.Complete() {
		return fmt.Errorf("[Store SetTokens] %w: incomplete token set", errors.ErrNotAuthenticated)
	}
	s.adopt(tokens, nil)
	return nil
}

// adopt makes tokens the session and mirrors them. With loadGen set it is the
// tail of a load: it gives way to a newer generation, and on success it also
// clears Loading, reporting true. Without it, it is SetTokens and starts a new
// generation.
func (s *Store) adopt(tokens token.Tokens, loadGen *uint64) bool {
	s.mu.Lock()
	if loadGen != nil && s.generation != *loadGen {
		s.mu.Unlock()
		return false
	}
	if loadGen == nil {
		s.generation++
	}
	if s.state.Tokens() == tokens && s.state.IsAuthenticated {
		if loadGen == nil {
			s.mu.Unlock()
			return true
		}
		s.state.Loading = false
		s.state.HasError = false
		snap := s.state
		s.mu.Unlock()
		s.notify(snap)
		return true
	}
	s.state.IDToken, s.state.AccessToken, s.state.RefreshToken = tokens.IDToken, tokens.AccessToken, tokens.RefreshToken
	s.state.IsAuthenticated = true
	s.state.HasError = false
	if loadGen != nil {
		s.state.Loading = false
	}
	if err := s.mirror.Write(tokens); err != nil {
		log.Err(err).Msg("Failed to mirror tokens to cookies")
	}
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)
	return true
}

// ClearTokens logs out: cookies first, then local state, then the navigation to
// the identity provider's logout page, so nothing is lost if navigation unloads
// the caller. State is reset even when clearing the cookies fails.
func (s *Store) ClearTokens(ctx context.Context) error {
	var errs []error

	s.mu.Lock()
	s.generation++
	if err := s.mirror.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("[Store ClearTokens] mirror: %w", err))
	}
	s.mu.Unlock()

	if s.logout != nil {
		if err := s.logout.ClearSession(ctx); err != nil {
			errs = append(errs, fmt.Errorf("[Store ClearTokens] logout: %w", err))
		}
	}

	s.apply(func(st *Snapshot) {
		*st = Snapshot{Loading: st.Loading}
	})

	if s.logoutURL != "" && s.navigate != nil {
		s.navigate(s.logoutURL)
	}

	err := errors.Join(errs...)
	if err != nil {
		log.Err(err).Msg("Logout did not complete cleanly")
	}
	return err
}

func (s *Store) apply(mutate func(*Snapshot)) {
	s.mu.Lock()
	mutate(&s.state)
	snap := s.state
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) notify(snap Snapshot) {
	s.mu.Lock()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
