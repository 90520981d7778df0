package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/askora/askora/internal/database/dbretry"
	"github.com/askora/askora/internal/database/types"
	"github.com/askora/askora/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// ErrUserNotFound indicates the user row does not exist.
var ErrUserNotFound = errors.New("user not found")

// UserModel handles database operations for user accounts.
type UserModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewUser creates a new UserModel instance.
func NewUser(db *bun.DB, logger *zap.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger.Named("db_user"),
	}
}

// GetUser retrieves a user by ID.
func (m *UserModel) GetUser(ctx context.Context, userID string) (*types.User, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.User, error) {
		user := new(types.User)

		err := m.db.NewSelect().
			Model(user).
			Where("id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrUserNotFound
			}

			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		return user, nil
	})
}

// SetStatus updates a user's account status.
func (m *UserModel) SetStatus(ctx context.Context, userID string, status enum.UserStatus) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewUpdate().
			Model((*types.User)(nil)).
			Set("status = ?", status).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", userID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update user status: %w", err)
		}

		return nil
	})
}
