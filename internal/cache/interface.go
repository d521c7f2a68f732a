package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gullrabia/Chat-app/internal/domain"
)

var ErrCacheMiss = errors.New("cache miss")

// UserCache caches user profiles. The session validator hits it on every
// request and every relay handshake, so a warm cache keeps the identity
// store off the hot path.
type UserCache interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User, ttl time.Duration) error
	Delete(ctx context.Context, userIDs ...string) error
	Close() error
}
