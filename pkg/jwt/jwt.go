package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
}

// Manager signs and validates HMAC tokens with a shared secret.
type Manager struct {
	secret   []byte
	duration time.Duration
	issuer   string

	// In-memory revocation store, keyed by user.
	revoked map[string]time.Time
	mu      sync.RWMutex
}

// NewManager creates a new JWT manager.
func NewManager(secret string, duration time.Duration, issuer string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret must not be empty")
	}
	return &Manager{
		secret:   []byte(secret),
		duration: duration,
		issuer:   issuer,
		revoked:  make(map[string]time.Time),
	}, nil
}

// Generate creates a signed token for the given user.
func (m *Manager) Generate(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate validates a token and returns its claims.
func (m *Manager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	m.mu.RLock()
	cutoff, revoked := m.revoked[claims.UserID]
	m.mu.RUnlock()
	if revoked && claims.IssuedAt != nil && !claims.IssuedAt.After(cutoff) {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// Revoke invalidates all tokens issued to the user up to now.
// Tokens issued afterwards (a fresh login) remain valid.
func (m *Manager) Revoke(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[userID] = time.Now()
}

// CleanupRevocations drops revocation entries older than the token lifetime;
// tokens issued before them have expired anyway.
func (m *Manager) CleanupRevocations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().Add(-m.duration)
	for userID, at := range m.revoked {
		if at.Before(cutoff) {
			delete(m.revoked, userID)
		}
	}
}
