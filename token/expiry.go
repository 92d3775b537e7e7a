package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-cv-session/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// DecodeExpiry reads the exp claim from the payload segment of a JWT.
//
// The signature is NOT verified. The result is an expiry hint used to decide whether
// a cached session is worth keeping; it must never be used for an authorization decision.
func DecodeExpiry(rawToken string) (time.Time, error) {
	unverified, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("[token DecodeExpiry] %w: %v", errors.ErrTokenMalformed, err)
	}

	exp, err := unverified.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("[token DecodeExpiry] %w: %v", errors.ErrTokenMalformed, err)
	}
	if exp == nil {
		return time.Time{}, fmt.Errorf("[token DecodeExpiry] %w: missing exp claim", errors.ErrTokenMalformed)
	}
	return exp.Time, nil
}

// IsExpired reports whether the token's exp claim lies in the past.
// A token whose expiry cannot be decoded is treated as expired.
func IsExpired(rawToken string) bool {
	exp, err := DecodeExpiry(rawToken)
	if err != nil {
		return true
	}
	return exp.Before(NowTimeFunc())
}
