package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/rs/zerolog/log"
)

// FallbackReply is shown to the user whenever the backend cannot answer.
const FallbackReply = "Sorry, I'm having trouble understanding that."

// Client talks to the chatbot backend, an endpoint answering
// GET {baseURL}?message=... with {"botReply": "..."}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type replyBody struct {
	BotReply string `json:"botReply"`
}

// Reply asks the backend about message. On failure it returns FallbackReply
// together with the error, so callers can always show something.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return FallbackReply, errors.ErrEmptyMessage
	}
	if c.baseURL == "" {
		return FallbackReply, fmt.Errorf("[chat Reply] %w: backend url", errors.ErrConfigMissing)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return FallbackReply, fmt.Errorf("[chat Reply] %w", err)
	}
	q := u.Query()
	q.Set("message", message)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return FallbackReply, fmt.Errorf("[chat Reply] %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Err(err).Msg("Chat backend unreachable")
		return FallbackReply, fmt.Errorf("[chat Reply] %w: %v", errors.ErrChatBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Error().Int("status", resp.StatusCode).Msg("Chat backend error")
		return FallbackReply, fmt.Errorf("[chat Reply] %w: status %d", errors.ErrChatBackend, resp.StatusCode)
	}

	var body replyBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return FallbackReply, fmt.Errorf("[chat Reply] %w: %v", errors.ErrChatBackend, err)
	}
	if body.BotReply == "" {
		return FallbackReply, fmt.Errorf("[chat Reply] %w: empty reply", errors.ErrChatBackend)
	}
	return body.BotReply, nil
}
