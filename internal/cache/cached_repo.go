package cache

import (
	"context"
	"errors"
	"time"

	"github.com/gullrabia/Chat-app/internal/domain"
	"github.com/gullrabia/Chat-app/internal/repository"
	"github.com/gullrabia/Chat-app/pkg/log"
)

// CachedUserRepository wraps a UserRepository with a read-through cache on
// GetByID. Writes invalidate. Cache failures degrade to the repository,
// never to the caller.
type CachedUserRepository struct {
	repository.UserRepository
	cache UserCache
	ttl   time.Duration
}

// NewCachedUserRepository decorates repo with the given cache.
func NewCachedUserRepository(repo repository.UserRepository, cache UserCache, ttl time.Duration) *CachedUserRepository {
	return &CachedUserRepository{
		UserRepository: repo,
		cache:          cache,
		ttl:            ttl,
	}
}

// GetByID returns the cached user when present, falling back to the
// underlying repository and populating the cache.
func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.cache.Get(ctx, id)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		lg := log.Ctx(ctx)
		lg.Warn().Err(err).Str(log.FieldUserID, id).Msg("user cache read failed")
	}

	user, err = r.UserRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, user, r.ttl); err != nil {
		lg := log.Ctx(ctx)
		lg.Warn().Err(err).Str(log.FieldUserID, id).Msg("user cache write failed")
	}
	return user, nil
}

// Update writes through and invalidates the cached entry.
func (r *CachedUserRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.UserRepository.Update(ctx, user); err != nil {
		return err
	}
	if err := r.cache.Delete(ctx, user.ID); err != nil {
		lg := log.Ctx(ctx)
		lg.Warn().Err(err).Str(log.FieldUserID, user.ID).Msg("user cache invalidation failed")
	}
	return nil
}
