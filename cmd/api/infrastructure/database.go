package infrastructure

import (
	"context"
	"fmt"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-roster/internal/adapter/db/sqlite"
	"user-roster/internal/config"
	domain "user-roster/internal/domain/user"
	"user-roster/pkg/logger"
)

// NewDatabase opens the SQLite roster, creates the table and seeds it when empty.
func NewDatabase(ctx context.Context, cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	db, err := gorm.Open(gormsqlite.Open(cfg.Store.DSN), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Each connection to an in-memory database sees its own empty database
	if isInMemory(cfg.Store.DSN) {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
	}

	if err := sqlite.Migrate(ctx, db, domain.DefaultSeed()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	l.Info("database ready",
		zap.String("driver", config.StoreDriverSQLite),
		zap.Bool("in_memory", isInMemory(cfg.Store.DSN)),
	)

	return db, nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func isInMemory(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}
