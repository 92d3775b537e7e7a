package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-cv-session/chat"
	"github.com/jrsteele09/go-cv-session/exchange"
	"github.com/jrsteele09/go-cv-session/internal/config"
	"github.com/jrsteele09/go-cv-session/token"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	httpClient *http.Client
	exchange   *exchange.Client
	verifier   exchange.IDTokenVerifier
	chat       *chat.Client
	cookieOpts token.CookieOptions
}

type Option func(*Server)

// WithHTTPClient sets the client used for the identity provider and the chat backend.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Server) {
		s.httpClient = hc
	}
}

// WithIDTokenVerifier replaces issuer discovery, e.g. with exchange.NewStaticVerifier.
func WithIDTokenVerifier(v exchange.IDTokenVerifier) Option {
	return func(s *Server) {
		s.verifier = v
	}
}

func New(config config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		env:    config.GetEnv(),
		mux:    http.NewServeMux(),
		config: config,
		cookieOpts: token.CookieOptions{
			SameSite: token.ParseSameSite(config.GetCookieSameSite()),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{Timeout: config.GetHTTPTimeout()}
	}

	s.exchange = exchange.NewClient(exchange.ConfigFrom(config), exchange.WithHTTPClient(s.httpClient))
	s.chat = chat.NewClient(config.GetChatBackendURL(), s.httpClient)

	if s.verifier == nil && config.GetIssuer() != "" {
		ctx, cancel := context.WithTimeout(context.Background(), config.GetHTTPTimeout())
		defer cancel()
		v, err := exchange.NewOIDCVerifier(ctx, config.GetIssuer(), config.GetClientID(), s.httpClient)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to create id token verifier: %w", err)
		}
		s.verifier = v
	}
	if s.verifier == nil {
		log.Warn().Msg("No issuer configured, ID tokens will not be verified")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
}
