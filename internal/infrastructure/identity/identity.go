package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned for tokens that are malformed, expired or not signed by the provider.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is what the provider vouches for about a caller.
type Identity struct {
	UID   string
	Email string
}

// Resolver maps an opaque bearer token to the caller's identity.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*Identity, error)
}
