package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/pkg/jwt"
)

var (
	// ErrUnauthenticated means no credential was presented.
	ErrUnauthenticated = errors.New("not authorized - token missing")

	// ErrInvalidCredential means the credential failed parsing, signature
	// verification, or expiry checks.
	ErrInvalidCredential = errors.New("invalid token")

	// ErrUnknownIdentity means the credential is valid but names no
	// existing account.
	ErrUnknownIdentity = errors.New("user not found")
)

// UserGetter looks an account up by ID. Satisfied by the user repository
// (optionally behind the redis cache).
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Validator resolves bearer credentials to user identities. It performs no
// mutation; both the HTTP middleware and the websocket handshake call it.
type Validator struct {
	tokens *jwt.Manager
	users  UserGetter
}

// NewValidator creates a session validator.
func NewValidator(tokens *jwt.Manager, users UserGetter) *Validator {
	return &Validator{tokens: tokens, users: users}
}

// Resolve validates a bearer credential and returns the account it names.
func (v *Validator) Resolve(ctx context.Context, credential string) (*domain.User, error) {
	if credential == "" {
		return nil, ErrUnauthenticated
	}

	claims, err := v.tokens.Validate(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredential, err)
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnknownIdentity
	}

	return user, nil
}
