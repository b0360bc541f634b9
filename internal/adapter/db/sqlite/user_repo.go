package sqlite

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "user-roster/internal/domain/user"
	pkgerrors "user-roster/pkg/errors"
)

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	ID    int64  `gorm:"primaryKey;autoIncrement"`
	Name  string `gorm:"not null"`
	Email string `gorm:"not null"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// UserRepo implements the usecase Repository on top of GORM and SQLite.
type UserRepo struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// Migrate creates the users table and inserts seed when the table is empty.
func Migrate(ctx context.Context, db *gorm.DB, seed []domain.User) error {
	if err := db.WithContext(ctx).AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}

	var count int64
	if err := db.WithContext(ctx).Model(&UserSchema{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 || len(seed) == 0 {
		return nil
	}

	rows := make([]UserSchema, len(seed))
	for i, u := range seed {
		rows[i] = UserSchema{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	if err := db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}

// ListAll returns every user ordered by ID, which is insertion order.
func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	var models []UserSchema
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, len(models))
	for i, model := range models {
		users[i] = toDomain(model)
	}
	return users, nil
}

// Append inserts a user and lets SQLite assign the next ID.
func (r *UserRepo) Append(ctx context.Context, name, email string) (*domain.User, error) {
	model := UserSchema{
		Name:  name,
		Email: email,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.Int64("id", model.ID))
	u := toDomain(model)
	return &u, nil
}

// GetByID retrieves a user by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NewNotFoundError("user", fmt.Sprintf("user not found: id=%d", id))
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := toDomain(model)
	return &u, nil
}

func toDomain(model UserSchema) domain.User {
	return domain.User{
		ID:    model.ID,
		Name:  model.Name,
		Email: model.Email,
	}
}
