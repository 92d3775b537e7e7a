package exchange

import (
	"context"
	"crypto"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/jrsteele09/go-cv-session/internal/errors"
)

// IDTokenVerifier checks an ID token's signature and audience. Unlike
// token.DecodeExpiry this is a trust decision.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) error
}

type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

var _ IDTokenVerifier = (*OIDCVerifier)(nil)

// NewOIDCVerifier discovers issuer's signing keys. Discovery and later key
// fetches go through httpClient when it is not nil.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string, httpClient *http.Client) (*OIDCVerifier, error) {
	if httpClient != nil {
		ctx = oidc.ClientContext(ctx, httpClient)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("[exchange NewOIDCVerifier] failed to query provider %q: %w", issuer, err)
	}
	return &OIDCVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// NewStaticVerifier verifies against fixed public keys, without discovery.
func NewStaticVerifier(issuer, clientID string, keys ...crypto.PublicKey) *OIDCVerifier {
	keySet := &oidc.StaticKeySet{PublicKeys: keys}
	return &OIDCVerifier{
		verifier: oidc.NewVerifier(issuer, keySet, &oidc.Config{ClientID: clientID}),
	}
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawIDToken string) error {
	if _, err := v.verifier.Verify(ctx, rawIDToken); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidIDToken, err)
	}
	return nil
}
