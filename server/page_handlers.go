package server

import (
	"net/http"

	"github.com/jrsteele09/go-cv-session/chat"
	"github.com/jrsteele09/go-cv-session/guard"
	"github.com/rs/zerolog"
)

// IndexHandler renders the public home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl, err := lookupTemplate("index.html")
	if err != nil {
		panic("Failed to parse index template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"AppName":   s.config.GetAppName(),
			"SignInURL": RouteSignIn,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to render index")
		}
	}
}

// PrivatePageHandler renders the chatbot page for signed-in users. Anyone else,
// including users whose cookies have expired, goes back to the home page.
func (s *Server) PrivatePageHandler() http.HandlerFunc {
	tmpl, err := lookupTemplate("fran.html")
	if err != nil {
		panic("Failed to parse private page template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		nav := &pageNavigator{}
		store := s.requestStore(w, r)
		g := guard.RequireAuthenticated(r.Context(), store, RouteHome, nav)
		defer g.Unmount()

		if nav.redirect(w, r) {
			return
		}
		if !g.Allowed() {
			http.Error(w, "Unauthenticated", http.StatusUnauthorized)
			return
		}

		data := map[string]interface{}{
			"AppName":   s.config.GetAppName(),
			"Messages":  chat.NewConversation().Messages(),
			"ChatURL":   RouteAPIChat,
			"LogoutURL": RouteLogout,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		if err := tmpl.Execute(w, data); err != nil {
			zerolog.Ctx(r.Context()).Err(err).Msg("Failed to render private page")
		}
	}
}
