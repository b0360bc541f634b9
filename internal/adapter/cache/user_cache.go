package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-roster/internal/domain/user"
)

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, user *domain.User) error

	// GetAll retrieves the cached roster. Returns nil on a miss; an empty
	// roster is returned as an empty, non-nil slice.
	GetAll(ctx context.Context) ([]domain.User, error)

	// SetAll stores the full roster with the configured TTL.
	SetAll(ctx context.Context, users []domain.User) error

	// InvalidateAll drops the cached roster.
	InvalidateAll(ctx context.Context) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
// Keys are namespaced by instance so a roster cached by one process is never
// served by another process sharing the same Redis.
type RedisUserCache struct {
	client   *redis.Client
	instance string
	ttl      time.Duration
	log      *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache scoped to instance.
func NewRedisUserCache(client *redis.Client, instance string, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client:   client,
		instance: instance,
		ttl:      ttl,
		log:      log,
	}
}

// cacheKey generates a Redis key for a user ID.
func (c *RedisUserCache) cacheKey(id int64) string {
	return fmt.Sprintf("roster:%s:user:%d", c.instance, id)
}

// listKey is the Redis key of the cached roster.
func (c *RedisUserCache) listKey() string {
	return fmt.Sprintf("roster:%s:users:all", c.instance)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, c.cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		c.log.Error("failed to unmarshal cached user", zap.Int64("user_id", id), zap.Error(err))
		return nil, err
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &user, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return fmt.Errorf("cannot cache nil user")
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, c.cacheKey(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.Int64("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.Int64("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// GetAll retrieves the roster from Redis cache.
func (c *RedisUserCache) GetAll(ctx context.Context) ([]domain.User, error) {
	data, err := c.client.Get(ctx, c.listKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("roster cache miss")
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get roster from cache", zap.Error(err))
		return nil, err
	}

	users := []domain.User{}
	if err := json.Unmarshal(data, &users); err != nil {
		c.log.Error("failed to unmarshal cached roster", zap.Error(err))
		return nil, err
	}

	c.log.Debug("roster cache hit", zap.Int("count", len(users)))
	return users, nil
}

// SetAll stores the roster in Redis cache with TTL.
func (c *RedisUserCache) SetAll(ctx context.Context, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}

	data, err := json.Marshal(users)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, c.listKey(), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set roster cache", zap.Error(err))
		return err
	}
	return nil
}

// InvalidateAll removes the cached roster.
func (c *RedisUserCache) InvalidateAll(ctx context.Context) error {
	if err := c.client.Del(ctx, c.listKey()).Err(); err != nil {
		c.log.Error("failed to invalidate roster cache", zap.Error(err))
		return err
	}
	return nil
}
