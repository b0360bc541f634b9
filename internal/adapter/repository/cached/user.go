package cached

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-roster/internal/adapter/cache"
	domain "user-roster/internal/domain/user"
	"user-roster/internal/usecase/user"
)

// UserRepository implements user.Repository with caching support.
// It wraps a store (memory or SQLite) and a cache implementation.
type UserRepository struct {
	store user.Repository
	cache cache.UserCache
	log   *zap.Logger
	group singleflight.Group

	// generation is bumped by every Append; a roster read under an older
	// generation must not stay in the cache.
	generation atomic.Uint64
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(store user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		store: store,
		cache: c,
		log:   log,
	}
}

// ListAll serves the roster from cache, loading it once per miss.
func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	if users, err := r.cache.GetAll(ctx); err != nil {
		r.log.Warn("roster cache error, falling back to store", zap.Error(err))
	} else if users != nil {
		return users, nil
	}

	result, err, _ := r.group.Do("users:all", func() (any, error) {
		gen := r.generation.Load()
		users, err := r.store.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		r.fillRoster(ctx, gen, users)
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers of a shared flight must not alias each other's slice
	shared := result.([]domain.User)
	users := make([]domain.User, len(shared))
	copy(users, shared)
	return users, nil
}

// Append writes through to the store, then invalidates the roster and caches the new user.
func (r *UserRepository) Append(ctx context.Context, name, email string) (*domain.User, error) {
	u, err := r.store.Append(ctx, name, email)
	if err != nil {
		return nil, err
	}
	r.generation.Add(1)

	if err := r.cache.InvalidateAll(ctx); err != nil {
		r.log.Warn("failed to invalidate roster cache after append", zap.Int64("id", u.ID), zap.Error(err))
	}
	if err := r.cache.Set(ctx, u); err != nil {
		r.log.Warn("failed to cache user", zap.Int64("id", u.ID), zap.Error(err))
	}

	return u, nil
}

// fillRoster caches users read under generation gen unless an Append has happened since.
// An Append that lands between the check and the write is caught by the second check,
// or by the Append's own invalidation which runs after its generation bump.
func (r *UserRepository) fillRoster(ctx context.Context, gen uint64, users []domain.User) {
	if r.generation.Load() != gen {
		r.log.Debug("roster changed while loading, skipping cache fill")
		return
	}
	if err := r.cache.SetAll(ctx, users); err != nil {
		r.log.Warn("failed to cache roster", zap.Error(err))
		return
	}
	if r.generation.Load() != gen {
		if err := r.cache.InvalidateAll(ctx); err != nil {
			r.log.Warn("failed to drop stale roster cache", zap.Error(err))
		}
	}
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	cachedUser, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn("cache get error, falling back to store", zap.Int64("id", id), zap.Error(err))
	} else if cachedUser != nil {
		return cachedUser, nil
	}

	result, err, _ := r.group.Do(fmt.Sprintf("user:%d", id), func() (any, error) {
		u, err := r.store.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Set(ctx, u); err != nil {
			r.log.Warn("failed to cache user", zap.Int64("id", id), zap.Error(err))
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := *result.(*domain.User)
	return &u, nil
}
