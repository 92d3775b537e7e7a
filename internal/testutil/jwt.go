// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var signingKey = []byte("test-signing-key")

// IDToken returns an HS256 JWT whose exp claim is exp.
func IDToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":   "user-1",
		"email": "fran@example.com",
		"iat":   exp.Add(-time.Hour).Unix(),
		"exp":   exp.Unix(),
	})
	signed, err := tok.SignedString(signingKey)
	require.NoError(t, err)
	return signed
}

// FreshIDToken expires an hour from now.
func FreshIDToken(t *testing.T) string {
	t.Helper()
	return IDToken(t, time.Now().Add(time.Hour))
}

// ExpiredIDToken expired an hour ago.
func ExpiredIDToken(t *testing.T) string {
	t.Helper()
	return IDToken(t, time.Now().Add(-time.Hour))
}
