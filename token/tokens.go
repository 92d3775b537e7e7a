package token

// Cookie names of the TokenCookieSet. The relay functions and the session store
// must agree on these.
const (
	IDTokenCookie      = "idToken"
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Tokens is the triple issued by the identity provider. An empty string means absent.
type Tokens struct {
	IDToken      string `json:"idToken"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Complete reports whether all three tokens are present.
func (t Tokens) Complete() bool {
	return t.IDToken != "" && t.AccessToken != "" && t.RefreshToken != ""
}

// IsZero reports whether no token is present.
func (t Tokens) IsZero() bool {
	return t == Tokens{}
}
