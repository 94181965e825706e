package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/redact"
	"github.com/phrazzld/tasks-api/internal/store"
)

// UserService provides user-related operations
type UserService interface {
	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID int64) (*domain.User, error)

	// GetUserByUsername retrieves a user by their username
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUser creates a new user with the specified username and password
	CreateUser(ctx context.Context, username, password string) (*domain.User, error)

	// UpdateUserPassword replaces a user's password
	UpdateUserPassword(ctx context.Context, userID int64, newPassword string) error
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore store.UserStore
	logger    *slog.Logger
	db        *sql.DB
}

// NewUserService creates a new UserService. Writes run in a transaction on db.
func NewUserService(userStore store.UserStore, db *sql.DB, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserServiceImpl{
		userStore: userStore,
		db:        db,
		logger:    logger.With("component", "user_service"),
	}
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logLookupError("failed to retrieve user", err, slog.Int64("user_id", userID))
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	s.logger.Debug("retrieved user successfully",
		"user_id", userID,
		"username", user.Username)

	return user, nil
}

// GetUserByUsername retrieves a user by their username
func (s *UserServiceImpl) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		s.logLookupError("failed to retrieve user by username", err, slog.String("username", username))
		return nil, fmt.Errorf("failed to retrieve user by username: %w", err)
	}

	s.logger.Debug("retrieved user by username successfully",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// CreateUser creates a new user with the specified username and password
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) CreateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, password)
	if err != nil {
		s.logger.Debug("rejected invalid user",
			"error", err,
			"username", username)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			s.logger.Debug("attempted to create user with existing username",
				"username", username)
		} else {
			s.logger.Error("failed to save user to database",
				"error", redact.Error(err),
				"username", username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created successfully in transaction",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// UpdateUserPassword replaces a user's password.
// Uses a transaction so the existence check and the write see the same row.
func (s *UserServiceImpl) UpdateUserPassword(ctx context.Context, userID int64, newPassword string) error {
	if newPassword == "" {
		return domain.ErrEmptyPassword
	}
	if len(newPassword) > domain.MaxPasswordLength {
		return domain.ErrPasswordTooLong
	}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)
		if _, err := txStore.GetByID(ctx, userID); err != nil {
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}
		return txStore.UpdatePassword(ctx, userID, newPassword)
	})
	if err != nil {
		s.logLookupError("failed to update user password", err, slog.Int64("user_id", userID))
		return fmt.Errorf("failed to update user password: %w", err)
	}

	s.logger.Info("user password updated successfully",
		"user_id", userID)
	return nil
}

func (s *UserServiceImpl) logLookupError(msg string, err error, attr slog.Attr) {
	if errors.Is(err, store.ErrUserNotFound) {
		s.logger.Debug(msg, "error", err, attr)
		return
	}
	s.logger.Error(msg, "error", redact.Error(err), attr)
}
