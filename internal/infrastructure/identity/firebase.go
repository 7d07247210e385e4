package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// FirebaseResolver verifies Firebase ID tokens.
type FirebaseResolver struct {
	client *auth.Client
}

func NewFirebaseResolver(client *auth.Client) *FirebaseResolver {
	return &FirebaseResolver{
		client: client,
	}
}

func (r *FirebaseResolver) Resolve(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	result, err := r.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := result.Claims["email"].(string)
	return &Identity{
		UID:   result.UID,
		Email: email,
	}, nil
}
