package cached

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-roster/internal/adapter/cache"
	"user-roster/internal/adapter/memory"
	domain "user-roster/internal/domain/user"
	pkgerrors "user-roster/pkg/errors"
)

const testInstance = "test"

func rosterKey(instance string) string { return "roster:" + instance + ":users:all" }

func userKey(instance string, id int) string {
	return fmt.Sprintf("roster:%s:user:%d", instance, id)
}

func newRedisClient(t *testing.T, mr *miniredis.Miniredis) *redis.Client {
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func setupCachedRepo(t *testing.T) (*UserRepository, *memory.UserStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := newRedisClient(t, mr)

	logger := zaptest.NewLogger(t)
	store := memory.NewUserStore(logger, domain.DefaultSeed())
	userCache := cache.NewRedisUserCache(client, testInstance, time.Minute, logger)
	return NewUserRepository(store, userCache, logger), store, mr
}

func TestUserRepository_ListAll_PopulatesCache(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSeed(), users)
	assert.True(t, mr.Exists(rosterKey(testInstance)))

	again, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, users, again)
}

func TestUserRepository_Append_InvalidatesRoster(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()

	_, err := repo.ListAll(ctx)
	require.NoError(t, err)

	u, err := repo.Append(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(4), u.ID)
	assert.False(t, mr.Exists(rosterKey(testInstance)))
	assert.True(t, mr.Exists(userKey(testInstance, 4)))

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "Alice", users[3].Name)
}

func TestUserRepository_FallsBackWhenRedisDown(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()
	mr.Close()

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	u, err := repo.Append(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(4), u.ID)

	got, err := repo.GetByID(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
}

func TestUserRepository_GetByID(t *testing.T) {
	repo, _, mr := setupCachedRepo(t)
	ctx := context.Background()

	u, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", u.Name)
	assert.True(t, mr.Exists(userKey(testInstance, 1)))

	_, err = repo.GetByID(ctx, 77)
	var nf *pkgerrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.False(t, mr.Exists(userKey(testInstance, 77)))
}

// gatedStore pauses ListAll after the store has been read until release is closed.
type gatedStore struct {
	*memory.UserStore
	read    chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedStore) ListAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.UserStore.ListAll(ctx)
	s.once.Do(func() {
		close(s.read)
		<-s.release
	})
	return users, err
}

func TestUserRepository_ConcurrentAppendIsNotHiddenByStaleRoster(t *testing.T) {
	mr := miniredis.RunT(t)
	logger := zaptest.NewLogger(t)
	store := &gatedStore{
		UserStore: memory.NewUserStore(logger, domain.DefaultSeed()),
		read:      make(chan struct{}),
		release:   make(chan struct{}),
	}
	repo := NewUserRepository(store, cache.NewRedisUserCache(newRedisClient(t, mr), testInstance, time.Minute, logger), logger)
	ctx := context.Background()

	done := make(chan []domain.User)
	go func() {
		users, err := repo.ListAll(ctx)
		assert.NoError(t, err)
		done <- users
	}()

	<-store.read
	_, err := repo.Append(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	close(store.release)

	// The in-flight read started before the append and may report the old roster
	assert.Len(t, <-done, 3)

	users, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.Equal(t, "Alice", users[3].Name)
}

func TestUserRepository_SeparateInstancesDoNotShareRoster(t *testing.T) {
	mr := miniredis.RunT(t)
	client := newRedisClient(t, mr)
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	first := NewUserRepository(
		memory.NewUserStore(logger, domain.DefaultSeed()),
		cache.NewRedisUserCache(client, "first", time.Minute, logger),
		logger,
	)
	_, err := first.Append(ctx, "Alice", "alice@example.com")
	require.NoError(t, err)
	users, err := first.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)

	second := NewUserRepository(
		memory.NewUserStore(logger, domain.DefaultSeed()),
		cache.NewRedisUserCache(client, "second", time.Minute, logger),
		logger,
	)
	users, err = second.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	_, err = second.GetByID(ctx, 4)
	var nf *pkgerrors.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
