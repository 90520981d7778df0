package models

import (
	"context"
	"fmt"
	"time"

	"github.com/askora/askora/internal/database/dbretry"
	"github.com/askora/askora/internal/database/types"
	"github.com/askora/askora/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// BanModel handles database operations for account bans.
type BanModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewBan creates a new BanModel instance.
func NewBan(db *bun.DB, logger *zap.Logger) *BanModel {
	return &BanModel{
		db:     db,
		logger: logger.Named("db_ban"),
	}
}

// GetActiveBans retrieves all bans for a user that are permanent or not yet expired.
func (m *BanModel) GetActiveBans(ctx context.Context, userID string) ([]*types.Ban, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Ban, error) {
		var bans []*types.Ban

		err := m.db.NewSelect().
			Model(&bans).
			Where("user_id = ?", userID).
			Where("ban_type = ? OR expires_at > ?", enum.BanTypePerm, time.Now()).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get active bans: %w", err)
		}

		return bans, nil
	})
}

// HasUnexpiredTempBan reports whether a user still serves a temporary ban.
// Expiry is checked on read; lapsed bans are never swept.
func (m *BanModel) HasUnexpiredTempBan(ctx context.Context, userID string) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		exists, err := m.db.NewSelect().
			Model((*types.Ban)(nil)).
			Where("user_id = ?", userID).
			Where("ban_type = ?", enum.BanTypeTemp).
			Where("expires_at > ?", time.Now()).
			Exists(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to check unexpired bans: %w", err)
		}

		return exists, nil
	})
}
