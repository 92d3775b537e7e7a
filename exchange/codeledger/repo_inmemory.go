package codeledger

import (
	"errors"
	"sync"
	"time"

	cverrors "github.com/jrsteele09/go-cv-session/internal/errors"
)

// DefaultRetention outlives any code the provider would still accept.
const DefaultRetention = 15 * time.Minute

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu        sync.Mutex
	retention time.Duration
	codes     map[string]time.Time // digest -> consumed at
}

// NewInMemoryRepo creates a ledger that forgets codes after retention.
func NewInMemoryRepo(retention time.Duration) *InMemoryRepo {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &InMemoryRepo{
		retention: retention,
		codes:     make(map[string]time.Time),
	}
}

func (r *InMemoryRepo) Consume(code string) error {
	if code == "" {
		return errors.New("code cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := NowTimeFunc()
	r.prune(now)

	digest := Digest(code)
	if _, used := r.codes[digest]; used {
		return cverrors.ErrCodeAlreadyUsed
	}
	r.codes[digest] = now
	return nil
}

func (r *InMemoryRepo) Get(code string) (*Entry, error) {
	if code == "" {
		return nil, errors.New("code cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	digest := Digest(code)
	consumedAt, ok := r.codes[digest]
	if !ok {
		return nil, errors.New("code not found")
	}
	return &Entry{Digest: digest, ConsumedAt: consumedAt}, nil
}

// prune must be called with mu held.
func (r *InMemoryRepo) prune(now time.Time) {
	for digest, consumedAt := range r.codes {
		if now.Sub(consumedAt) > r.retention {
			delete(r.codes, digest)
		}
	}
}
