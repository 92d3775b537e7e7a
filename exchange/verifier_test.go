package exchange_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-cv-session/exchange"
	"github.com/jrsteele09/go-cv-session/internal/errors"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://cognito-idp.eu-west-1.amazonaws.com/pool-1"

func signIDToken(t *testing.T, key *rsa.PrivateKey, aud string) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, jwtlib.MapClaims{
		"iss": testIssuer,
		"aud": aud,
		"sub": "user-1",
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	raw, err := tok.SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestStaticVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	v := exchange.NewStaticVerifier(testIssuer, "client-1", key.Public())

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, v.Verify(context.Background(), signIDToken(t, key, "client-1")))
	})

	t.Run("wrong audience", func(t *testing.T) {
		err := v.Verify(context.Background(), signIDToken(t, key, "someone-else"))
		require.ErrorIs(t, err, errors.ErrInvalidIDToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		err = v.Verify(context.Background(), signIDToken(t, other, "client-1"))
		require.ErrorIs(t, err, errors.ErrInvalidIDToken)
	})
}
