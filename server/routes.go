package server

import (
	"github.com/jrsteele09/go-cv-session/relay"
)

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.PageMiddleware()...))

	// AUTH
	s.RegisterRouteHandler("GET "+RouteSignIn, ChainMiddleware(s.SignInHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteCallbackAlt, ChainMiddleware(s.OAuthCallbackHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.PageMiddleware()...))

	// Private pages
	s.RegisterRouteHandler("GET "+RoutePrivate, ChainMiddleware(s.PrivatePageHandler(), s.PageMiddleware()...))

	// Session relay
	s.RegisterRouteHandler("GET "+RouteSetToken, ChainMiddleware(relay.SetHandler(s.config.GetPostLoginRedirectURL(), s.cookieOpts), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSetToken, ChainMiddleware(relay.SetHandler(s.config.GetPostLoginRedirectURL(), s.cookieOpts), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteGetToken, ChainMiddleware(relay.GetHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteClearToken, ChainMiddleware(relay.ClearHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteClearToken, ChainMiddleware(relay.ClearHandler(), s.APIMiddleware()...))

	// API routes
	s.RegisterRouteHandler("POST "+RouteAPIChat, ChainMiddleware(s.ChatHandler(), s.APIMiddleware()...))

	// CORS preflight for the routes called cross-origin
	for _, route := range []string{RouteSetToken, RouteGetToken, RouteClearToken, RouteAPIChat} {
		s.RegisterRouteHandler("OPTIONS "+route, ChainMiddleware(s.PreflightHandler(), s.APIMiddleware()...))
	}
}
