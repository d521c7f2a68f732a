package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gullrabia/Chat-app/internal/config"
	"github.com/gullrabia/Chat-app/internal/domain"
)

// RedisUserCache implements UserCache backed by Redis.
type RedisUserCache struct {
	client *redis.Client
	prefix string
}

// NewRedisUserCache connects to Redis and returns a user cache.
func NewRedisUserCache(cfg config.RedisConfig, prefix string) (*RedisUserCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisUserCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisUserCache) key(userID string) string {
	return fmt.Sprintf("%s:user:%s", c.prefix, userID)
}

// Get returns the cached user or ErrCacheMiss.
func (c *RedisUserCache) Get(ctx context.Context, userID string) (*domain.User, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var user cachedUser
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}

	return user.toDomain(), nil
}

// Set stores the user with the given TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User, ttl time.Duration) error {
	data, err := json.Marshal(fromDomain(user))
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(user.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

// Delete drops the given users from the cache.
func (c *RedisUserCache) Delete(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.key(id))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}

	return nil
}

// Close closes the Redis connection.
func (c *RedisUserCache) Close() error {
	return c.client.Close()
}

// cachedUser carries the password hash too, which the public User JSON
// deliberately drops; the cache round-trip must be lossless.
type cachedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Bio          string    `json:"bio"`
	ProfilePic   string    `json:"profilePic"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func fromDomain(u *domain.User) *cachedUser {
	return &cachedUser{
		ID:           u.ID,
		Email:        u.Email,
		FullName:     u.FullName,
		Bio:          u.Bio,
		ProfilePic:   u.ProfilePic,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c *cachedUser) toDomain() *domain.User {
	return &domain.User{
		ID:           c.ID,
		Email:        c.Email,
		FullName:     c.FullName,
		Bio:          c.Bio,
		ProfilePic:   c.ProfilePic,
		PasswordHash: c.PasswordHash,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
