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

// StatsModel handles database operations for per-user moderation stats.
type StatsModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewStats creates a new StatsModel instance.
func NewStats(db *bun.DB, logger *zap.Logger) *StatsModel {
	return &StatsModel{
		db:     db,
		logger: logger.Named("db_stats"),
	}
}

// GetStats retrieves a user's moderation stats. Users without a row yet get
// the defaults: zero strikes and full trust.
func (m *StatsModel) GetStats(ctx context.Context, userID string) (*types.ModerationStats, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ModerationStats, error) {
		stats := new(types.ModerationStats)

		err := m.db.NewSelect().
			Model(stats).
			Where("user_id = ?", userID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return &types.ModerationStats{UserID: userID, TrustScore: 1.0}, nil
			}

			return nil, fmt.Errorf("failed to get moderation stats: %w", err)
		}

		return stats, nil
	})
}

// ApplyDecision updates a user's stats for a single moderation decision.
// Adverse decisions increment the strike counters and debit trust; an
// ignore decision credits trust back. The row is created on first use.
func (m *StatsModel) ApplyDecision(ctx context.Context, userID string, decision enum.Decision) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		stats, err := m.GetStats(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now()

		switch decision {
		case enum.DecisionBanPerm:
			stats.TotalStrikes++
			stats.LastStrikeAt = &now
			stats.TrustScore = types.ClampTrust(stats.TrustScore + types.TrustDeltaBanPerm)
		case enum.DecisionBanTemp:
			stats.TotalStrikes++
			stats.RejectedCount++
			stats.LastStrikeAt = &now
			stats.TrustScore = types.ClampTrust(stats.TrustScore + types.TrustDeltaBanTemp)
		case enum.DecisionWarn:
			stats.TotalStrikes++
			stats.FlaggedCount++
			stats.LastStrikeAt = &now
			stats.TrustScore = types.ClampTrust(stats.TrustScore + types.TrustDeltaWarn)
		case enum.DecisionIgnore:
			stats.TrustScore = types.ClampTrust(stats.TrustScore + types.TrustDeltaIgnore)
		}

		stats.UpdatedAt = now

		_, err = m.db.NewInsert().
			Model(stats).
			On("CONFLICT (user_id) DO UPDATE").
			Set("total_strikes = EXCLUDED.total_strikes").
			Set("rejected_count = EXCLUDED.rejected_count").
			Set("flagged_count = EXCLUDED.flagged_count").
			Set("last_strike_at = EXCLUDED.last_strike_at").
			Set("trust_score = EXCLUDED.trust_score").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to apply stats decision: %w", err)
		}

		return nil
	})
}
