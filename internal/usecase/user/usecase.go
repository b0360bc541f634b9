package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-roster/internal/domain/user"
	pkgerrors "user-roster/pkg/errors"
	"user-roster/pkg/logger"
	"user-roster/pkg/security"
)

// Repository defines the interface for user data access operations.
// The in-memory store and the SQLite store both satisfy it.
type Repository interface {
	// ListAll returns all users in insertion order.
	ListAll(ctx context.Context) ([]domain.User, error)
	// Append assigns the next ID and stores the user.
	Append(ctx context.Context, name, email string) (*domain.User, error)
	// GetByID returns a NotFoundError when the ID is unknown.
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// UserUsecase implements the business logic for the user roster.
// It provides a clean separation between the transport layer and data layer.
type UserUsecase struct {
	repo     Repository
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new UserUsecase with the provided repository and logger.
func New(r Repository, log *zap.Logger) *UserUsecase {
	return &UserUsecase{repo: r, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a ValidationError.
func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", e.Field()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	field := ""
	if len(validationErrors) == 1 {
		field = validationErrors[0].Field()
	}
	return pkgerrors.NewValidationError(field, strings.Join(messages, ", "))
}

// AddUser appends a user once both name and email are present.
func (uc *UserUsecase) AddUser(ctx context.Context, in AddUserRequest) (*AddUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)
	log.Info("adding user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := uc.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := uc.repo.Append(ctx, in.Name, in.Email)
	if err != nil {
		log.Error("failed to append user", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to add user", err)
	}

	log.Info("user added", zap.Int64("id", u.ID))
	return &AddUserResponse{User: toDTO(*u)}, nil
}

// GetUser retrieves a user by ID.
func (uc *UserUsecase) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	if in.ID <= 0 {
		log.Warn("get user validation failed", zap.Int64("id", in.ID), zap.String("reason", "invalid id"))
		return nil, pkgerrors.NewValidationError("ID", "invalid user id")
	}

	u, err := uc.repo.GetByID(ctx, in.ID)
	if err != nil {
		var nf *pkgerrors.NotFoundError
		if errors.As(err, &nf) {
			log.Debug("user not found", zap.Int64("id", in.ID))
			return nil, err
		}
		log.Error("failed to get user", zap.Int64("id", in.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to get user", err)
	}

	return &GetUserResponse{User: toDTO(*u)}, nil
}

// ListUsers returns every user in insertion order, optionally filtered by a
// case-insensitive substring match on name or email.
func (uc *UserUsecase) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, uc.log)

	query, err := security.ValidateSearchQuery(in.Query)
	if err != nil {
		log.Warn("invalid search query", zap.String("query", in.Query), zap.Error(err))
		return nil, pkgerrors.NewValidationError("Query", err.Error())
	}

	domainUsers, err := uc.repo.ListAll(ctx)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to list users", err)
	}

	needle := strings.ToLower(query)
	users := make([]User, 0, len(domainUsers))
	for _, du := range domainUsers {
		if needle != "" &&
			!strings.Contains(strings.ToLower(du.Name), needle) &&
			!strings.Contains(strings.ToLower(du.Email), needle) {
			continue
		}
		users = append(users, toDTO(du))
	}

	log.Debug("listed users", zap.String("query", query), zap.Int("count", len(users)))
	return &ListUsersResponse{Users: users}, nil
}

func toDTO(u domain.User) User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}
