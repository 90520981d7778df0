package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/askora/askora/internal/ai"
	"github.com/askora/askora/internal/cache"
	"github.com/askora/askora/internal/content"
	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/notify"
	"github.com/askora/askora/internal/queue"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReportStatusPayload is the reporter-facing summary of a report outcome.
type ReportStatusPayload struct {
	ActionTaken       string `json:"actionTaken,omitempty"`
	Status            string `json:"status"`
	IsRemovingContent bool   `json:"isRemovingContent"`
}

// ReportPipeline scores user-filed reports and auto-resolves the clear-cut
// ones. Reports judge the target on severity alone; the author's strike
// and trust history does not factor in.
type ReportPipeline struct {
	store       *content.Store
	scorer      *ai.Scorer
	enforcer    *Enforcer
	notifier    *notify.Notifier
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

// NewReportPipeline creates a new report moderation pipeline.
func NewReportPipeline(
	store *content.Store, scorer *ai.Scorer, enforcer *Enforcer,
	notifier *notify.Notifier, invalidator *cache.Invalidator, logger *zap.Logger,
) *ReportPipeline {
	return &ReportPipeline{
		store:       store,
		scorer:      scorer,
		enforcer:    enforcer,
		notifier:    notifier,
		invalidator: invalidator,
		logger:      logger.Named("report_pipeline"),
	}
}

// Process scores one report and applies the mapped outcome. The report is
// re-read and must still be PENDING; the guarded report update serializes
// racing jobs so only one outcome ever lands.
func (p *ReportPipeline) Process(ctx context.Context, job *queue.ReportJob) error {
	reportID, err := primitive.ObjectIDFromHex(job.ReportID)
	if err != nil {
		return fmt.Errorf("%w: %w", content.ErrNotFound, err)
	}

	report, err := p.store.Reports().Get(ctx, reportID)
	if err != nil {
		return err
	}

	if report.Status != content.ReportPending {
		return fmt.Errorf("%w: report already moderated", ErrInvalidState)
	}

	text, err := p.loadTargetText(ctx, report)
	if err != nil {
		return err
	}

	score, err := p.scorer.Score(ctx, text)
	if err != nil {
		// A sustained oracle outage falls back to the fail-safe score,
		// which resolves the report at the warning tier rather than
		// dismissing it or banning on no evidence. Transient errors go
		// back to the queue for retry.
		if !errors.Is(err, ai.ErrOracleUnavailable) {
			return fmt.Errorf("failed to score report: %w", err)
		}

		score = ai.FailSafeScore()

		p.logger.Warn("Oracle unavailable, using fail-safe score",
			zap.String("report_id", job.ReportID))
	}

	decision := MapReportDecision(score.Severity)
	removing := ShouldRemoveContent(score.Severity)

	p.logger.Debug("Scored report",
		zap.String("report_id", job.ReportID),
		zap.Int("severity", score.Severity),
		zap.String("decision", string(decision)))

	result := content.ScoreResult{
		Decision:   decision,
		Confidence: score.Confidence,
		Reasons:    score.Reasons,
		Severity:   score.Severity,
	}

	switch decision {
	case enum.ReportDecisionBanUserPerm:
		_, err := p.enforcer.BanPermanently(ctx, report.TargetUserID, PermBanTitle,
			score.Reasons, score.Severity, enum.ActorAIModeration, nil)
		if err != nil {
			return err
		}

		if err := p.resolve(ctx, report, result, content.ReportResolved, string(decision), removing); err != nil {
			return err
		}

	case enum.ReportDecisionBanUserTemp:
		duration := TempBanDuration(score.Severity, score.Confidence, 0, 1)

		_, err := p.enforcer.BanTemporarily(ctx, report.TargetUserID, TempBanTitle,
			score.Reasons, score.Severity, enum.ActorAIModeration, duration, nil)
		if err != nil {
			return err
		}

		if err := p.resolve(ctx, report, result, content.ReportResolved, string(decision), removing); err != nil {
			return err
		}

	case enum.ReportDecisionWarnUser:
		title := WarnTitle
		if len(score.Reasons) > 0 {
			title = score.Reasons[0]
		}

		warning, err := p.enforcer.Warn(ctx, report.TargetUserID, title,
			score.Reasons, score.Severity, enum.ActorAIModeration, nil)
		if err != nil {
			return err
		}

		p.notifier.Notify(ctx, report.TargetUserID, notify.EventWarnUser, warning)

		if err := p.resolve(ctx, report, result, content.ReportResolved, string(decision), removing); err != nil {
			return err
		}

	case enum.ReportDecisionUncertain:
		if err := p.resolve(ctx, report, result, content.ReportReviewing, "", false); err != nil {
			return err
		}

	case enum.ReportDecisionIgnore:
		if err := p.resolve(ctx, report, result, content.ReportDismissed, string(decision), false); err != nil {
			return err
		}
	}

	if removing {
		p.deactivateTarget(ctx, report)
	}

	return nil
}

// loadTargetText fetches the reported content's text. Content that has
// been deleted since the report was filed scores as empty text.
func (p *ReportPipeline) loadTargetText(ctx context.Context, report *content.Report) (string, error) {
	switch report.TargetType {
	case enum.ContentTypeQuestion:
		question, err := p.store.Questions().Get(ctx, report.TargetID)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				return "Title: \nBody: ", nil
			}

			return "", err
		}

		return fmt.Sprintf("Title: %s\nBody: %s", question.Title, question.Body), nil

	case enum.ContentTypeAnswer:
		answer, err := p.store.Answers().Get(ctx, report.TargetID)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				return "Body: ", nil
			}

			return "", err
		}

		return fmt.Sprintf("Body: %s", answer.Body), nil

	case enum.ContentTypeReply:
		reply, err := p.store.Replies().Get(ctx, report.TargetID)
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				return "Body: ", nil
			}

			return "", err
		}

		return fmt.Sprintf("Body: %s", reply.Body), nil

	default:
		return "", fmt.Errorf("%w: unknown target type %s", ErrInvalidState, report.TargetType)
	}
}

// resolve writes the outcome onto the report and notifies the reporter.
// Losing the guarded update means another job already resolved the report;
// that is surfaced as InvalidState so the worker drops this job.
func (p *ReportPipeline) resolve(
	ctx context.Context, report *content.Report, result content.ScoreResult,
	status content.ReportStatus, actionTaken string, removing bool,
) error {
	err := p.store.Reports().ApplyScore(ctx, report.ID, result, status, actionTaken, removing)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return fmt.Errorf("%w: report resolved by a concurrent job", ErrInvalidState)
		}

		return err
	}

	p.notifier.Notify(ctx, report.ReportedBy, notify.EventReportStatusChanged, ReportStatusPayload{
		ActionTaken:       actionTaken,
		Status:            string(status),
		IsRemovingContent: removing,
	})

	return nil
}

// deactivateTarget takes the reported content down. Best-effort: the
// report is already resolved, and a miss here leaves only stale content.
func (p *ReportPipeline) deactivateTarget(ctx context.Context, report *content.Report) {
	var err error

	switch report.TargetType {
	case enum.ContentTypeQuestion:
		err = p.store.Questions().Deactivate(ctx, report.TargetID)
	case enum.ContentTypeAnswer:
		err = p.store.Answers().Deactivate(ctx, report.TargetID)
	case enum.ContentTypeReply:
		err = p.store.Replies().Deactivate(ctx, report.TargetID)
	}

	if err != nil {
		p.logger.Warn("Failed to deactivate reported content",
			zap.String("target_id", report.TargetID.Hex()),
			zap.Error(err))

		return
	}

	p.invalidator.InvalidateContent(ctx, report.TargetID.Hex())
}
