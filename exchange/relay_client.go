package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/jrsteele09/go-cv-session/token"
)

const (
	RelayGetPath   = "/get-token"
	RelaySetPath   = "/set-token"
	RelayClearPath = "/clear-token"
)

// RelayClient performs the cookie-to-JSON handoff against the session relay.
// The token cookies are HttpOnly, so they travel only through the http.Client's jar.
type RelayClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRelayClient expects httpClient to carry a cookie jar for the relay's origin.
func NewRelayClient(baseURL string, httpClient *http.Client) *RelayClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &RelayClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchTokens asks the Get relay for the TokenCookieSet. Any outcome other than a
// 200 with all three tokens is reported as ErrNotAuthenticated.
func (c *RelayClient) FetchTokens(ctx context.Context) (token.Tokens, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+RelayGetPath, nil)
	if err != nil {
		return token.Tokens{}, fmt.Errorf("[RelayClient FetchTokens] %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return token.Tokens{}, fmt.Errorf("[RelayClient FetchTokens] %w: %v", errors.ErrNotAuthenticated, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return token.Tokens{}, fmt.Errorf("[RelayClient FetchTokens] %w: status %d", errors.ErrNotAuthenticated, resp.StatusCode)
	}

	var tokens token.Tokens
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return token.Tokens{}, fmt.Errorf("[RelayClient FetchTokens] %w: %v", errors.ErrNotAuthenticated, err)
	}
	if !tokens.Complete() {
		return token.Tokens{}, fmt.Errorf("[RelayClient FetchTokens] %w: incomplete token set", errors.ErrNotAuthenticated)
	}
	return tokens, nil
}

// ClearSession calls the Clear relay, which expires the token cookies.
func (c *RelayClient) ClearSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RelayClearPath, nil)
	if err != nil {
		return fmt.Errorf("[RelayClient ClearSession] %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[RelayClient ClearSession] %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("[RelayClient ClearSession] unexpected status %d", resp.StatusCode)
	}
	return nil
}
