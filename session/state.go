package session

import "github.com/jrsteele09/go-cv-session/token"

// Status is the state-machine view of a Snapshot.
type Status int

const (
	Anonymous Status = iota
	Loading
	Authenticated
	AnonymousWithError
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case AnonymousWithError:
		return "anonymous_with_error"
	default:
		return "anonymous"
	}
}

// Snapshot is a copy of the session at one point in time.
//
// IsAuthenticated implies all three tokens are present and the ID token had not
// expired when it was last validated.
type Snapshot struct {
	IDToken         string
	AccessToken     string
	RefreshToken    string
	IsAuthenticated bool
	Loading         bool
	HasError        bool
}

func (s Snapshot) Tokens() token.Tokens {
	return token.Tokens{
		IDToken:      s.IDToken,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	}
}

func (s Snapshot) Status() Status {
	switch {
	case s.Loading:
		return Loading
	case s.IsAuthenticated:
		return Authenticated
	case s.HasError:
		return AnonymousWithError
	default:
		return Anonymous
	}
}
