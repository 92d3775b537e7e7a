package exchange

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-cv-session/internal/config"
	"github.com/jrsteele09/go-cv-session/internal/errors"
)

// Config identifies the client at the identity provider's hosted UI.
type Config struct {
	Domain       string // e.g. "auth.example.com", no scheme
	ClientID     string
	ClientSecret string
	RedirectURI  string // login callback
	LogoutURI    string
}

// ConfigFrom reads the identity provider settings from the application config.
func ConfigFrom(c config.OAuthConfig) Config {
	return Config{
		Domain:       strings.TrimSuffix(strings.TrimPrefix(c.GetCognitoDomain(), "https://"), "/"),
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURI:  c.GetRedirectURI(),
		LogoutURI:    c.GetLogoutURI(),
	}
}

func (c Config) baseURL() string {
	return "https://" + c.Domain
}

// TokenURL is the provider's OAuth2 token endpoint.
func (c Config) TokenURL() string {
	return c.baseURL() + "/oauth2/token"
}

// BuildLoginURL returns the hosted UI login page for the authorization code flow.
// It never returns a partial URL: any missing setting yields ErrConfigMissing.
func BuildLoginURL(c Config) (string, error) {
	if err := c.require("domain", c.Domain, "client id", c.ClientID, "redirect uri", c.RedirectURI); err != nil {
		return "", fmt.Errorf("[exchange BuildLoginURL] %w", err)
	}
	return fmt.Sprintf("%s/login?response_type=code&client_id=%s&redirect_uri=%s",
		c.baseURL(), url.QueryEscape(c.ClientID), url.QueryEscape(c.RedirectURI)), nil
}

// BuildLogoutURL returns the hosted UI logout page.
func BuildLogoutURL(c Config) (string, error) {
	if err := c.require("domain", c.Domain, "client id", c.ClientID, "logout uri", c.LogoutURI); err != nil {
		return "", fmt.Errorf("[exchange BuildLogoutURL] %w", err)
	}
	return fmt.Sprintf("%s/logout?client_id=%s&logout_uri=%s",
		c.baseURL(), url.QueryEscape(c.ClientID), url.QueryEscape(c.LogoutURI)), nil
}

// require takes name/value pairs and reports the first empty value.
func (Config) require(pairs ...string) error {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			missing = append(missing, pairs[i])
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errors.ErrConfigMissing, strings.Join(missing, ", "))
	}
	return nil
}
