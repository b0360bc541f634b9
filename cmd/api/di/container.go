package di

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-roster/cmd/api/infrastructure"
	"user-roster/internal/adapter/cache"
	"user-roster/internal/adapter/db/sqlite"
	ginhandler "user-roster/internal/adapter/gin/handler"
	"user-roster/internal/adapter/grpc/middleware"
	"user-roster/internal/adapter/memory"
	"user-roster/internal/adapter/repository/cached"
	"user-roster/internal/config"
	domain "user-roster/internal/domain/user"
	"user-roster/internal/usecase/user"
	"user-roster/internal/view"
	redisclient "user-roster/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
	Templates   *template.Template
	// InstanceID scopes this process's cache keys; the roster lives only as long as the process
	InstanceID string
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *Container, err error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l, InstanceID: uuid.NewString()}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	store, err := c.newStore(ctx)
	if err != nil {
		return nil, err
	}

	var repo user.Repository = store
	var rawRedis *goredis.Client
	if cfg.Redis.Enabled {
		c.RedisClient, err = infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		rawRedis = c.RedisClient.Client

		userCache := cache.NewRedisUserCache(
			rawRedis,
			c.InstanceID,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(store, userCache, l)
	}

	// Initialize use case
	c.UserUC = user.New(repo, l)

	// A nil Redis client leaves the limiter disabled
	c.RateLimiter = middleware.NewRateLimiter(
		rawRedis,
		middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstCapacity:     cfg.RateLimit.BurstCapacity,
			Enabled:           cfg.RateLimit.Enabled,
		},
		l,
	)

	c.Templates, err = view.LoadTemplates()
	if err != nil {
		return nil, err
	}

	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	l.Info("container ready",
		zap.String("instance_id", c.InstanceID),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("rate_limit", c.RateLimiter.Enabled()),
	)

	return c, nil
}

// newStore builds the roster store selected by STORE_DRIVER.
func (c *Container) newStore(ctx context.Context) (user.Repository, error) {
	switch c.Config.Store.Driver {
	case config.StoreDriverSQLite:
		db, err := infrastructure.NewDatabase(ctx, c.Config, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return sqlite.NewUserRepo(db, c.Logger), nil
	default:
		return memory.NewUserStore(c.Logger, domain.DefaultSeed()), nil
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
