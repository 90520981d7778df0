package moderation

import (
	"context"
	"fmt"

	"github.com/askora/askora/internal/database"
	"github.com/askora/askora/internal/database/types/enum"
	"go.uber.org/zap"
)

// TrustLedger applies moderation decisions to per-user trust scores and
// strike counters. Updates arrive through the trust metrics queue, which
// de-duplicates deliveries; the ledger itself applies each job blindly.
type TrustLedger struct {
	db     database.Client
	logger *zap.Logger
}

// NewTrustLedger creates a new trust ledger.
func NewTrustLedger(db database.Client, logger *zap.Logger) *TrustLedger {
	return &TrustLedger{
		db:     db,
		logger: logger.Named("trust_ledger"),
	}
}

// Apply records one decision's effect on the user's stats row.
func (l *TrustLedger) Apply(ctx context.Context, userID string, decision enum.Decision) error {
	if err := l.db.Model().Stats().ApplyDecision(ctx, userID, decision); err != nil {
		return fmt.Errorf("failed to apply trust decision: %w", err)
	}

	l.logger.Debug("Applied trust decision",
		zap.String("user_id", userID),
		zap.String("decision", string(decision)))

	return nil
}
