package server

import (
	"net/http"

	"github.com/jrsteele09/go-cv-session/guard"
	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/jrsteele09/go-cv-session/session"
	"github.com/rs/zerolog"
)

const (
	msgAuthFailed        = "Authentication failed. Please try again."
	msgAuthNotConfigured = "Authentication is not configured"
)

// SignInHandler sends signed-in users to the private page and everyone else to
// the identity provider's hosted login.
func (s *Server) SignInHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		nav := &pageNavigator{}
		store := s.requestStore(w, r)
		g := guard.RedirectIfAuthenticated(store, RoutePrivate, nav)
		defer g.Unmount()

		loadSession(r.Context(), store, r)
		if nav.redirect(w, r) {
			return
		}

		loginURL, err := s.exchange.LoginURL()
		if err != nil {
			logger.Err(err).Msg("Sign in unavailable")
			http.Error(w, msgAuthNotConfigured, http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, loginURL, http.StatusFound)
	}
}

// OAuthCallbackHandler completes the authorization code flow. The code is
// exchanged at most once; the tokens become the session cookies.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		code := r.FormValue("code")
		errorParam := r.FormValue("error")

		if errorParam != "" {
			logger.Warn().
				Str("error", errorParam).
				Str("error_description", r.FormValue("error_description")).
				Msg("Authorization failed at the identity provider")
			http.Error(w, msgAuthFailed, http.StatusUnauthorized)
			return
		}

		store := s.requestStore(w, r)

		if code == "" {
			loadSession(r.Context(), store, r)
			if st := store.State(); st.IsAuthenticated {
				http.Redirect(w, r, RoutePrivate, http.StatusFound)
				return
			}
			http.Error(w, msgAuthFailed, http.StatusUnauthorized)
			return
		}

		tokens, err := s.exchange.ExchangeCodeForTokens(r.Context(), code)
		if err != nil {
			logger.Err(err).Msg("Token exchange failed")
			if errors.Is(err, errors.ErrConfigMissing) {
				http.Error(w, msgAuthNotConfigured, http.StatusInternalServerError)
				return
			}
			http.Error(w, msgAuthFailed, http.StatusUnauthorized)
			return
		}

		if s.verifier != nil {
			if err := s.verifier.Verify(r.Context(), tokens.IDToken); err != nil {
				logger.Err(err).Msg("ID token rejected")
				http.Error(w, msgAuthFailed, http.StatusUnauthorized)
				return
			}
		}

		if err := store.SetTokens(tokens.IDToken, tokens.AccessToken, tokens.RefreshToken); err != nil {
			logger.Err(err).Msg("Failed to store tokens")
			http.Error(w, msgAuthFailed, http.StatusUnauthorized)
			return
		}
		http.Redirect(w, r, RoutePrivate, http.StatusFound)
	}
}

// LogoutHandler expires the session cookies, then sends the browser to the
// identity provider's logout page. Without a logout URL it lands on the home page.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())

		nav := &pageNavigator{}
		logoutURL, err := s.exchange.LogoutURL()
		if err != nil {
			logger.Err(err).Msg("Identity provider logout unavailable")
			logoutURL = RouteHome
		}

		store := s.requestStore(w, r, session.WithLogoutRedirect(logoutURL, nav.Navigate))
		if err := store.ClearTokens(r.Context()); err != nil {
			logger.Err(err).Msg("Logout incomplete")
		}
		if !nav.redirect(w, r) {
			http.Redirect(w, r, RouteHome, http.StatusFound)
		}
	}
}
