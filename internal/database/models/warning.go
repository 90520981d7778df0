package models

import (
	"context"
	"fmt"
	"time"

	"github.com/askora/askora/internal/database/dbretry"
	"github.com/askora/askora/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// WarningModel handles database operations for moderation warnings.
type WarningModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewWarning creates a new WarningModel instance.
func NewWarning(db *bun.DB, logger *zap.Logger) *WarningModel {
	return &WarningModel{
		db:     db,
		logger: logger.Named("db_warning"),
	}
}

// GetActiveWarnings retrieves all unexpired warnings for a user.
func (m *WarningModel) GetActiveWarnings(ctx context.Context, userID string) ([]*types.Warning, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Warning, error) {
		var warnings []*types.Warning

		err := m.db.NewSelect().
			Model(&warnings).
			Where("user_id = ?", userID).
			Where("expires_at > ?", time.Now()).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get active warnings: %w", err)
		}

		return warnings, nil
	})
}

// MarkSeen flags a warning as seen by the user.
func (m *WarningModel) MarkSeen(ctx context.Context, warningID int64) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewUpdate().
			Model((*types.Warning)(nil)).
			Set("seen = TRUE").
			Where("id = ?", warningID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to mark warning seen: %w", err)
		}

		return nil
	})
}
