package config

// OAuthConfig describes the identity provider (a Cognito hosted UI domain).
type OAuthConfig interface {
	GetCognitoDomain() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetLogoutURI() string
	// GetIssuer is optional. When set, ID tokens are verified against the issuer's JWKS.
	GetIssuer() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetCognitoDomain() string {
	return GetEnv("COGNITO_DOMAIN", "")
}

func (OAuth) GetClientID() string {
	return GetEnv("COGNITO_CLIENT_ID", "")
}

func (OAuth) GetClientSecret() string {
	return GetEnv("COGNITO_CLIENT_SECRET", "")
}

func (OAuth) GetRedirectURI() string {
	return GetEnv("COGNITO_REDIRECT_URI", "")
}

func (OAuth) GetLogoutURI() string {
	return GetEnv("COGNITO_LOGOUT_URI", "")
}

func (OAuth) GetIssuer() string {
	return GetEnv("COGNITO_ISSUER", "")
}
