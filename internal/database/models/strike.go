package models

import (
	"context"
	"fmt"

	"github.com/askora/askora/internal/database/dbretry"
	"github.com/askora/askora/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// StrikeModel handles database operations for the strike ledger.
type StrikeModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStrike creates a new StrikeModel instance.
func NewStrike(db *bun.DB, logger *zap.Logger) *StrikeModel {
	return &StrikeModel{
		db:     db,
		logger: logger.Named("db_strike"),
	}
}

// GetStrikes retrieves the strike ledger for a user, newest first.
func (m *StrikeModel) GetStrikes(ctx context.Context, userID string) ([]*types.ModerationStrike, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ModerationStrike, error) {
		var strikes []*types.ModerationStrike

		err := m.db.NewSelect().
			Model(&strikes).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get strikes: %w", err)
		}

		return strikes, nil
	})
}

// CountStrikes returns how many strikes a user has accumulated.
func (m *StrikeModel) CountStrikes(ctx context.Context, userID string) (int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		count, err := m.db.NewSelect().
			Model((*types.ModerationStrike)(nil)).
			Where("user_id = ?", userID).
			Count(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to count strikes: %w", err)
		}

		return count, nil
	})
}
