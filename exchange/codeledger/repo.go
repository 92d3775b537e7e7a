package codeledger

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Entry records when an authorization code was presented to the token endpoint.
// Only a digest of the code is kept.
type Entry struct {
	Digest     string
	ConsumedAt time.Time
}

// Repo remembers consumed authorization codes so that none is exchanged twice.
type Repo interface {
	// Consume marks code as used. It returns errors.ErrCodeAlreadyUsed if it already was.
	Consume(code string) error
	Get(code string) (*Entry, error)
}

// Digest is the key a code is stored under.
func Digest(code string) string {
	sum := blake2b.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
