package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/askora/askora/internal/database"
	"github.com/askora/askora/internal/database/types"
	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/notify"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Ban titles used by the automatic pipelines.
const (
	PermBanTitle = "Permanent Account Suspension"
	TempBanTitle = "Temporary Account Suspension"
	WarnTitle    = "Community Guideline Warning"
)

// Enforcer creates ban and warning records and flips account status. Each
// enforcement runs as one relational transaction: ban row, account status,
// and strike commit or fail together. The disconnect signal and user
// notification run after commit and are best-effort.
type Enforcer struct {
	db       database.Client
	notifier *notify.Notifier
	logger   *zap.Logger
}

// NewEnforcer creates a new enforcer.
func NewEnforcer(db database.Client, notifier *notify.Notifier, logger *zap.Logger) *Enforcer {
	return &Enforcer{
		db:       db,
		notifier: notifier,
		logger:   logger.Named("enforcer"),
	}
}

// BanPermanently issues a permanent ban and terminates the account. The
// optional strike is committed in the same transaction.
func (e *Enforcer) BanPermanently(
	ctx context.Context, userID, title string, reasons []string,
	severity int, actor enum.Actor, strike *types.ModerationStrike,
) (*types.Ban, error) {
	ban := &types.Ban{
		UserID:    userID,
		Title:     title,
		Reasons:   reasons,
		BanType:   enum.BanTypePerm,
		Severity:  severity,
		BannedBy:  actor,
		CreatedAt: time.Now(),
	}

	err := e.db.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return e.applyBan(ctx, tx, ban, enum.UserStatusTerminated, strike)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply permanent ban: %w", err)
	}

	e.logger.Info("Permanently banned user",
		zap.String("user_id", userID),
		zap.String("banned_by", string(actor)))

	e.notifier.Notify(ctx, userID, notify.EventBanUser, ban)
	e.notifier.Disconnect(ctx, userID)

	return ban, nil
}

// BanTemporarily issues a temporary ban and suspends the account until the
// ban expires. Expiry is checked on read, so a zero-length ban from a
// below-threshold severity suspends the account only until the user
// reactivates it; human-initiated bans validate their duration upstream.
func (e *Enforcer) BanTemporarily(
	ctx context.Context, userID, title string, reasons []string,
	severity int, actor enum.Actor, duration time.Duration, strike *types.ModerationStrike,
) (*types.Ban, error) {
	if duration < 0 {
		return nil, ErrDurationRequired
	}

	now := time.Now()
	expiresAt := now.Add(duration)
	durationMs := duration.Milliseconds()

	ban := &types.Ban{
		UserID:     userID,
		Title:      title,
		Reasons:    reasons,
		BanType:    enum.BanTypeTemp,
		Severity:   severity,
		BannedBy:   actor,
		ExpiresAt:  &expiresAt,
		DurationMs: &durationMs,
		CreatedAt:  now,
	}

	err := e.db.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return e.applyBan(ctx, tx, ban, enum.UserStatusSuspended, strike)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply temporary ban: %w", err)
	}

	e.logger.Info("Temporarily banned user",
		zap.String("user_id", userID),
		zap.Duration("duration", duration),
		zap.String("banned_by", string(actor)))

	e.notifier.Notify(ctx, userID, notify.EventBanUser, ban)
	e.notifier.Disconnect(ctx, userID)

	return ban, nil
}

// Warn issues a warning without touching account status. The warning is
// delivered to the user by the calling pipeline, not here, since the event
// name differs between the content and report paths.
func (e *Enforcer) Warn(
	ctx context.Context, userID, title string, reasons []string,
	severity int, actor enum.Actor, strike *types.ModerationStrike,
) (*types.Warning, error) {
	now := time.Now()

	warning := &types.Warning{
		UserID:    userID,
		Title:     title,
		Reasons:   reasons,
		Severity:  severity,
		WarnedBy:  actor,
		ExpiresAt: now.Add(types.WarningExpiry),
		CreatedAt: now,
	}

	err := e.db.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(warning).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert warning: %w", err)
		}

		return e.insertStrike(ctx, tx, strike)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply warning: %w", err)
	}

	e.logger.Info("Warned user",
		zap.String("user_id", userID),
		zap.String("warned_by", string(actor)))

	return warning, nil
}

// RecordStrike appends a strike outside any enforcement, used when a
// decision carries no ban or warning of its own.
func (e *Enforcer) RecordStrike(ctx context.Context, strike *types.ModerationStrike) error {
	err := e.db.DB().RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return e.insertStrike(ctx, tx, strike)
	})
	if err != nil {
		return fmt.Errorf("failed to record strike: %w", err)
	}

	return nil
}

// Reactivate restores a suspended account to active, but only once every
// temporary ban has lapsed. A terminated account can never self-reactivate.
func (e *Enforcer) Reactivate(ctx context.Context, userID string) error {
	user, err := e.db.Model().User().GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.Status != enum.UserStatusSuspended {
		return fmt.Errorf("%w: account is %s, not SUSPENDED", ErrInvalidState, user.Status)
	}

	banned, err := e.db.Model().Ban().HasUnexpiredTempBan(ctx, userID)
	if err != nil {
		return err
	}

	if banned {
		return fmt.Errorf("%w: account still serves an unexpired ban", ErrInvalidState)
	}

	if err := e.db.Model().User().SetStatus(ctx, userID, enum.UserStatusActive); err != nil {
		return err
	}

	e.logger.Info("Reactivated user", zap.String("user_id", userID))

	return nil
}

func (e *Enforcer) applyBan(
	ctx context.Context, tx bun.Tx, ban *types.Ban,
	status enum.UserStatus, strike *types.ModerationStrike,
) error {
	if _, err := tx.NewInsert().Model(ban).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert ban: %w", err)
	}

	_, err := tx.NewUpdate().
		Model((*types.User)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", ban.UserID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	return e.insertStrike(ctx, tx, strike)
}

func (e *Enforcer) insertStrike(ctx context.Context, tx bun.Tx, strike *types.ModerationStrike) error {
	if strike == nil {
		return nil
	}

	strike.CreatedAt = time.Now()

	if _, err := tx.NewInsert().Model(strike).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert strike: %w", err)
	}

	return nil
}
