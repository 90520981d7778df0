package moderation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/askora/askora/internal/cache"
	"github.com/askora/askora/internal/content"
	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/notify"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OverrideAction is a human moderator's verdict on an escalated report.
type OverrideAction struct {
	ModeratorID string
	ActionTaken enum.ReportDecision
	Title       string
	Reasons     []string
	Severity    int
	BanDuration time.Duration // Required for BAN_USER_TEMP
}

// Override applies human moderator decisions to reports the AI deferred.
// A report is only actionable while REVIEWING with an UNCERTAIN verdict,
// and each action consumes the moderator's rate budget.
type Override struct {
	store       *content.Store
	enforcer    *Enforcer
	notifier    *notify.Notifier
	invalidator *cache.Invalidator
	points      *PointsTracker
	logger      *zap.Logger
}

// NewOverride creates a new override handler.
func NewOverride(
	store *content.Store, enforcer *Enforcer, notifier *notify.Notifier,
	invalidator *cache.Invalidator, points *PointsTracker, logger *zap.Logger,
) *Override {
	return &Override{
		store:       store,
		enforcer:    enforcer,
		notifier:    notifier,
		invalidator: invalidator,
		points:      points,
		logger:      logger.Named("override"),
	}
}

// Apply performs the moderator's action on the report. All validation
// happens before any state mutation; a concurrent moderator losing the
// guarded report update gets ErrInvalidState with nothing applied twice.
func (o *Override) Apply(ctx context.Context, reportID string, action *OverrideAction) error {
	if action.ActionTaken == enum.ReportDecisionBanUserTemp && action.BanDuration <= 0 {
		return ErrDurationRequired
	}

	id, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		return fmt.Errorf("%w: %w", content.ErrNotFound, err)
	}

	report, err := o.store.Reports().Get(ctx, id)
	if err != nil {
		return err
	}

	if report.Status != content.ReportReviewing || report.AIDecision != enum.ReportDecisionUncertain {
		return fmt.Errorf("%w: report not open for manual moderation", ErrInvalidState)
	}

	// The budget bounds attempts, not outcomes; a failed enforcement
	// still consumes the action's points.
	if _, err := o.points.Charge(ctx, action.ModeratorID, action.ActionTaken); err != nil {
		return err
	}

	removing := false

	switch action.ActionTaken {
	case enum.ReportDecisionBanUserPerm:
		_, err := o.enforcer.BanPermanently(ctx, report.TargetUserID, action.Title,
			action.Reasons, action.Severity, enum.ActorAdminModeration, nil)
		if err != nil {
			return err
		}

		removing = true

		if err := o.resolve(ctx, report, action, content.ReportResolved, removing); err != nil {
			return err
		}

	case enum.ReportDecisionBanUserTemp:
		_, err := o.enforcer.BanTemporarily(ctx, report.TargetUserID, action.Title,
			action.Reasons, action.Severity, enum.ActorAdminModeration, action.BanDuration, nil)
		if err != nil {
			return err
		}

		removing = true

		if err := o.resolve(ctx, report, action, content.ReportResolved, removing); err != nil {
			return err
		}

	case enum.ReportDecisionWarnUser:
		warning, err := o.enforcer.Warn(ctx, report.TargetUserID, action.Title,
			action.Reasons, action.Severity, enum.ActorAdminModeration, nil)
		if err != nil {
			return err
		}

		o.notifier.Notify(ctx, report.TargetUserID, notify.EventWarnUser, warning)

		if err := o.resolve(ctx, report, action, content.ReportResolved, removing); err != nil {
			return err
		}

	case enum.ReportDecisionIgnore:
		if err := o.resolve(ctx, report, action, content.ReportDismissed, removing); err != nil {
			return err
		}

	default:
		return fmt.Errorf("%w: %s is not a manual action", ErrInvalidState, action.ActionTaken)
	}

	o.logger.Info("Applied moderator override",
		zap.String("report_id", reportID),
		zap.String("moderator_id", action.ModeratorID),
		zap.String("action", string(action.ActionTaken)))

	if removing {
		o.deactivateTarget(ctx, report)
	}

	return nil
}

func (o *Override) resolve(
	ctx context.Context, report *content.Report, action *OverrideAction,
	status content.ReportStatus, removing bool,
) error {
	err := o.store.Reports().Resolve(ctx, report.ID,
		status, string(action.ActionTaken), action.Reasons, action.Severity, removing)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return fmt.Errorf("%w: report resolved by a concurrent moderator", ErrInvalidState)
		}

		return err
	}

	o.notifier.Notify(ctx, report.ReportedBy, notify.EventReportStatusChanged, ReportStatusPayload{
		ActionTaken:       string(action.ActionTaken),
		Status:            string(status),
		IsRemovingContent: removing,
	})

	return nil
}

func (o *Override) deactivateTarget(ctx context.Context, report *content.Report) {
	var err error

	switch report.TargetType {
	case enum.ContentTypeQuestion:
		err = o.store.Questions().Deactivate(ctx, report.TargetID)
	case enum.ContentTypeAnswer:
		err = o.store.Answers().Deactivate(ctx, report.TargetID)
	case enum.ContentTypeReply:
		err = o.store.Replies().Deactivate(ctx, report.TargetID)
	}

	if err != nil {
		o.logger.Warn("Failed to deactivate reported content",
			zap.String("target_id", report.TargetID.Hex()),
			zap.Error(err))

		return
	}

	o.invalidator.InvalidateContent(ctx, report.TargetID.Hex())
}
