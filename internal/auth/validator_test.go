package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/pkg/jwt"
)

type fakeUserGetter struct {
	users map[string]*domain.User
}

func (f *fakeUserGetter) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newTestValidator(t *testing.T, users map[string]*domain.User) (*Validator, *jwt.Manager) {
	t.Helper()
	tokens, err := jwt.NewManager("test-secret", time.Hour, "chat-app")
	if err != nil {
		t.Fatalf("failed to create token manager: %v", err)
	}
	return NewValidator(tokens, &fakeUserGetter{users: users}), tokens
}

func TestResolveValidCredential(t *testing.T) {
	alice := &domain.User{ID: "u1", Email: "alice@example.com", FullName: "Alice"}
	v, tokens := newTestValidator(t, map[string]*domain.User{"u1": alice})

	token, err := tokens.Generate("u1")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	user, err := v.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("resolved wrong user: %+v", user)
	}
}

func TestResolveMissingCredential(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	_, err := v.Resolve(context.Background(), "")
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestResolveMalformedCredential(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	_, err := v.Resolve(context.Background(), "not-a-token")
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestResolveForgedCredential(t *testing.T) {
	v, _ := newTestValidator(t, nil)

	other, err := jwt.NewManager("different-secret", time.Hour, "chat-app")
	if err != nil {
		t.Fatal(err)
	}
	forged, err := other.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}

	_, err = v.Resolve(context.Background(), forged)
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}

func TestResolveUnknownIdentity(t *testing.T) {
	v, tokens := newTestValidator(t, map[string]*domain.User{})

	token, err := tokens.Generate("gone")
	if err != nil {
		t.Fatal(err)
	}

	_, err = v.Resolve(context.Background(), token)
	if !errors.Is(err, ErrUnknownIdentity) {
		t.Fatalf("err = %v, want ErrUnknownIdentity", err)
	}
}

func TestResolveRevokedCredential(t *testing.T) {
	alice := &domain.User{ID: "u1"}
	v, tokens := newTestValidator(t, map[string]*domain.User{"u1": alice})

	token, err := tokens.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	tokens.Revoke("u1")

	_, err = v.Resolve(context.Background(), token)
	if !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("err = %v, want ErrInvalidCredential", err)
	}
}
