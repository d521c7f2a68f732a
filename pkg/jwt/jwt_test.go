package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager("test-secret", ttl, "chat-app")
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	return m
}

func TestGenerateAndValidate(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.Generate("u1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "u1" {
		t.Fatalf("claims.UserID = %q, want u1", claims.UserID)
	}
	if claims.Issuer != "chat-app" {
		t.Fatalf("claims.Issuer = %q, want chat-app", claims.Issuer)
	}
}

func TestEmptySecretRejected(t *testing.T) {
	if _, err := NewManager("", time.Hour, "chat-app"); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestValidateGarbage(t *testing.T) {
	m := newTestManager(t, time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Validate(%q) = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestValidateWrongSecret(t *testing.T) {
	m := newTestManager(t, time.Hour)
	other, err := NewManager("other-secret", time.Hour, "chat-app")
	if err != nil {
		t.Fatal(err)
	}

	token, err := other.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateExpired(t *testing.T) {
	m := newTestManager(t, -time.Minute)

	token, err := m.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Validate(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("err = %v, want ErrExpiredToken", err)
	}
}

func TestRevokeInvalidatesOldTokens(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, err := m.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(10 * time.Millisecond)
	m.Revoke("u1")

	if _, err := m.Validate(token); !errors.Is(err, ErrRevokedToken) {
		t.Fatalf("err = %v, want ErrRevokedToken", err)
	}

	// A fresh login after logout must work.
	time.Sleep(1100 * time.Millisecond)
	fresh, err := m.Generate("u1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Validate(fresh); err != nil {
		t.Fatalf("fresh token after revoke rejected: %v", err)
	}
}

func TestCleanupRevocations(t *testing.T) {
	m := newTestManager(t, time.Millisecond)
	m.Revoke("u1")

	time.Sleep(10 * time.Millisecond)
	m.CleanupRevocations()

	m.mu.RLock()
	_, still := m.revoked["u1"]
	m.mu.RUnlock()
	if still {
		t.Fatal("expired revocation entry must be pruned")
	}
}
