package exchange

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrsteele09/go-cv-session/exchange/codeledger"
	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/jrsteele09/go-cv-session/token"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// Client trades authorization codes for tokens at the provider's token endpoint.
// Codes are single use: each code reaches the endpoint at most once, whatever the outcome.
type Client struct {
	cfg        Config
	httpClient *http.Client
	ledger     codeledger.Repo
	inflight   singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLedger(repo codeledger.Repo) Option {
	return func(c *Client) {
		c.ledger = repo
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ledger:     codeledger.NewInMemoryRepo(codeledger.DefaultRetention),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoginURL is BuildLoginURL for the client's configuration.
func (c *Client) LoginURL() (string, error) {
	return BuildLoginURL(c.cfg)
}

// LogoutURL is BuildLogoutURL for the client's configuration.
func (c *Client) LogoutURL() (string, error) {
	return BuildLogoutURL(c.cfg)
}

// ExchangeCodeForTokens performs the authorization_code grant. Concurrent calls with
// the same code share one request; later calls fail with ErrCodeAlreadyUsed.
// Failures are never retried.
func (c *Client) ExchangeCodeForTokens(ctx context.Context, code string) (token.Tokens, error) {
	if err := c.cfg.require("domain", c.cfg.Domain, "client id", c.cfg.ClientID,
		"client secret", c.cfg.ClientSecret, "redirect uri", c.cfg.RedirectURI); err != nil {
		return token.Tokens{}, fmt.Errorf("[exchange ExchangeCodeForTokens] %w", err)
	}
	if code == "" {
		return token.Tokens{}, fmt.Errorf("[exchange ExchangeCodeForTokens] %w: empty code", errors.ErrCodeExchangeFailed)
	}

	v, err, shared := c.inflight.Do(code, func() (interface{}, error) {
		if err := c.ledger.Consume(code); err != nil {
			return token.Tokens{}, err
		}
		return c.exchange(ctx, code)
	})
	if shared {
		log.Debug().Msg("Duplicate code exchange collapsed into in-flight request")
	}
	if err != nil {
		return token.Tokens{}, fmt.Errorf("[exchange ExchangeCodeForTokens] %w", err)
	}
	return v.(token.Tokens), nil
}

func (c *Client) exchange(ctx context.Context, code string) (token.Tokens, error) {
	conf := &oauth2.Config{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		RedirectURL:  c.cfg.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   c.cfg.baseURL() + "/oauth2/authorize",
			TokenURL:  c.cfg.TokenURL(),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	oauth2Token, err := conf.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			log.Err(err).Int("status", retrieveErr.Response.StatusCode).Msg("Token endpoint rejected authorization code")
			return token.Tokens{}, fmt.Errorf("%w: status %d", errors.ErrCodeExchangeFailed, retrieveErr.Response.StatusCode)
		}
		log.Err(err).Msg("Token endpoint request failed")
		return token.Tokens{}, fmt.Errorf("%w: %v", errors.ErrCodeExchangeFailed, err)
	}

	rawIDToken, _ := oauth2Token.Extra("id_token").(string)
	tokens := token.Tokens{
		IDToken:      rawIDToken,
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
	}
	if !tokens.Complete() {
		return token.Tokens{}, fmt.Errorf("%w: token response missing fields", errors.ErrCodeExchangeFailed)
	}
	return tokens, nil
}
