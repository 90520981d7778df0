package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/askora/askora/internal/ai"
	"github.com/askora/askora/internal/cache"
	"github.com/askora/askora/internal/content"
	"github.com/askora/askora/internal/database"
	"github.com/askora/askora/internal/database/types"
	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/notify"
	"github.com/askora/askora/internal/queue"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// contentTarget is the resolved subject of a content moderation job.
type contentTarget struct {
	id      primitive.ObjectID
	userID  string
	text    string
	status  content.ModerationStatus
	version *int
	kind    enum.ContentType
}

// ContentPipeline scores newly created content and applies the resulting
// decision. Every step tolerates re-delivery: the status advancement guard
// no-ops on repeats and the trust update is de-duplicated at the queue.
type ContentPipeline struct {
	db          database.Client
	store       *content.Store
	scorer      *ai.Scorer
	queue       *queue.Client
	enforcer    *Enforcer
	notifier    *notify.Notifier
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

// NewContentPipeline creates a new content moderation pipeline.
func NewContentPipeline(
	db database.Client, store *content.Store, scorer *ai.Scorer, queueClient *queue.Client,
	enforcer *Enforcer, notifier *notify.Notifier, invalidator *cache.Invalidator, logger *zap.Logger,
) *ContentPipeline {
	return &ContentPipeline{
		db:          db,
		store:       store,
		scorer:      scorer,
		queue:       queueClient,
		enforcer:    enforcer,
		notifier:    notifier,
		invalidator: invalidator,
		logger:      logger.Named("content_pipeline"),
	}
}

// Process moderates one piece of content. The relational enforcement
// commits before any document-store status write, so a failure in between
// leaves the content PENDING rather than banned-but-unflagged.
func (p *ContentPipeline) Process(ctx context.Context, job *queue.ContentJob) error {
	target, err := p.loadTarget(ctx, job)
	if err != nil {
		return err
	}

	if target.status != content.StatusPending {
		return fmt.Errorf("%w: content already moderated", ErrInvalidState)
	}

	score, err := p.scorer.Score(ctx, target.text)
	if err != nil {
		return fmt.Errorf("failed to score content: %w", err)
	}

	stats, err := p.db.Model().Stats().GetStats(ctx, target.userID)
	if err != nil {
		return err
	}

	riskScore := ComputeRiskScore(score.Confidence, score.Severity, stats.TotalStrikes, stats.TrustScore)
	decision := MapDecision(riskScore)

	p.logger.Debug("Scored content",
		zap.String("content_id", job.ContentID),
		zap.String("content_type", job.ContentType),
		zap.Int("severity", score.Severity),
		zap.Float64("risk_score", riskScore),
		zap.String("decision", string(decision)))

	strike := &types.ModerationStrike{
		UserID:               target.userID,
		AIDecision:           string(decision),
		AIConfidence:         score.Confidence,
		AIReasons:            score.Reasons,
		Severity:             score.Severity,
		RiskScore:            riskScore,
		TargetContentID:      job.ContentID,
		TargetType:           target.kind,
		TargetContentVersion: target.version,
		StrikedBy:            enum.ActorAIModeration,
	}

	switch decision {
	case enum.DecisionBanPerm:
		_, err := p.enforcer.BanPermanently(ctx, target.userID, PermBanTitle,
			score.Reasons, score.Severity, enum.ActorAIModeration, strike)
		if err != nil {
			return err
		}

		p.notifier.Notify(ctx, target.userID, notify.EventStrikeReceived, strike)

		if err := p.applyStatus(ctx, target, content.StatusRejected, true); err != nil {
			return err
		}

	case enum.DecisionBanTemp:
		duration := TempBanDuration(score.Severity, score.Confidence, stats.TotalStrikes, stats.TrustScore)

		_, err := p.enforcer.BanTemporarily(ctx, target.userID, TempBanTitle,
			score.Reasons, score.Severity, enum.ActorAIModeration, duration, strike)
		if err != nil {
			return err
		}

		if err := p.applyStatus(ctx, target, content.StatusRejected, true); err != nil {
			return err
		}

	case enum.DecisionWarn:
		title := WarnTitle
		if len(score.Reasons) > 0 {
			title = score.Reasons[0]
		}

		warning, err := p.enforcer.Warn(ctx, target.userID, title,
			score.Reasons, score.Severity, enum.ActorAIModeration, strike)
		if err != nil {
			return err
		}

		p.notifier.Notify(ctx, target.userID, notify.EventWarn, warning)

		if err := p.applyStatus(ctx, target, content.StatusFlagged, false); err != nil {
			return err
		}

	case enum.DecisionIgnore:
		if err := p.applyStatus(ctx, target, content.StatusApproved, false); err != nil {
			return err
		}
	}

	return p.enqueueTrust(ctx, job, decision, target.userID)
}

// loadTarget resolves the job's content and the text to score. Questions
// are scored per version; answers and replies in place.
func (p *ContentPipeline) loadTarget(ctx context.Context, job *queue.ContentJob) (*contentTarget, error) {
	switch enum.ContentType(job.ContentType) {
	case enum.ContentTypeQuestion:
		if job.Version == nil {
			return nil, fmt.Errorf("%w: question job missing version", ErrInvalidState)
		}

		questionID, err := primitive.ObjectIDFromHex(job.ContentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", content.ErrNotFound, err)
		}

		question, err := p.store.Questions().Get(ctx, questionID)
		if err != nil {
			return nil, err
		}

		version, err := p.store.Versions().GetByVersion(ctx, questionID, *job.Version)
		if err != nil {
			return nil, err
		}

		return &contentTarget{
			id:      questionID,
			userID:  question.UserID,
			text:    fmt.Sprintf("Title: %s\nBody: %s", version.Title, version.Body),
			status:  version.ModerationStatus,
			version: job.Version,
			kind:    enum.ContentTypeQuestion,
		}, nil

	case enum.ContentTypeAnswer:
		answerID, err := primitive.ObjectIDFromHex(job.ContentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", content.ErrNotFound, err)
		}

		answer, err := p.store.Answers().Get(ctx, answerID)
		if err != nil {
			return nil, err
		}

		if !answer.IsActive {
			return nil, content.ErrNotFound
		}

		return &contentTarget{
			id:     answerID,
			userID: answer.UserID,
			text:   fmt.Sprintf("Body: %s", answer.Body),
			status: answer.ModerationStatus,
			kind:   enum.ContentTypeAnswer,
		}, nil

	case enum.ContentTypeReply:
		replyID, err := primitive.ObjectIDFromHex(job.ContentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", content.ErrNotFound, err)
		}

		reply, err := p.store.Replies().Get(ctx, replyID)
		if err != nil {
			return nil, err
		}

		if !reply.IsActive {
			return nil, content.ErrNotFound
		}

		return &contentTarget{
			id:     replyID,
			userID: reply.UserID,
			text:   fmt.Sprintf("Body: %s", reply.Body),
			status: reply.ModerationStatus,
			kind:   enum.ContentTypeReply,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown content type %s", ErrInvalidState, job.ContentType)
	}
}

// applyStatus advances the content's moderation status and optionally
// deactivates it, then evicts the affected cache entries.
func (p *ContentPipeline) applyStatus(
	ctx context.Context, target *contentTarget, status content.ModerationStatus, deactivate bool,
) error {
	switch target.kind {
	case enum.ContentTypeQuestion:
		if err := p.store.Versions().AdvanceStatus(ctx, target.id, *target.version, status); err != nil {
			return err
		}

		if err := p.store.Questions().AdvanceStatus(ctx, target.id, status); err != nil {
			return err
		}

		if deactivate {
			if err := p.store.Questions().Deactivate(ctx, target.id); err != nil {
				return err
			}
		}

		p.invalidator.InvalidateVersion(ctx, target.id.Hex(), *target.version)

	case enum.ContentTypeAnswer:
		if err := p.store.Answers().AdvanceStatus(ctx, target.id, status); err != nil {
			return err
		}

		if deactivate {
			if err := p.store.Answers().Deactivate(ctx, target.id); err != nil {
				return err
			}
		}

	case enum.ContentTypeReply:
		if err := p.store.Replies().AdvanceStatus(ctx, target.id, status); err != nil {
			return err
		}

		if deactivate {
			if err := p.store.Replies().Deactivate(ctx, target.id); err != nil {
				return err
			}
		}
	}

	p.invalidator.InvalidateContent(ctx, target.id.Hex())

	return nil
}

// enqueueTrust hands the decision's trust deltas to the trust metrics
// queue. The dedup key is derived from the job identity, so a re-delivered
// moderation job cannot debit trust twice.
func (p *ContentPipeline) enqueueTrust(
	ctx context.Context, job *queue.ContentJob, decision enum.Decision, userID string,
) error {
	version := 0
	if job.Version != nil {
		version = *job.Version
	}

	dedupKey := fmt.Sprintf("%s:%s:%d", job.ContentType, job.ContentID, version)

	err := p.queue.Enqueue(ctx, queue.TrustMetricsQueue,
		&queue.TrustJob{UserID: userID, Decision: string(decision)}, dedupKey)
	if err != nil && !errors.Is(err, queue.ErrDuplicateJob) {
		return fmt.Errorf("failed to enqueue trust update: %w", err)
	}

	return nil
}
