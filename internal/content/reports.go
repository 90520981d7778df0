package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/askora/askora/internal/database/types/enum"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ReportRepo handles document operations for reports.
type ReportRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// Get retrieves a report by ID.
func (r *ReportRepo) Get(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	report := new(Report)

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(report)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	return report, nil
}

// Insert files a new report in the PENDING state.
func (r *ReportRepo) Insert(ctx context.Context, report *Report) (primitive.ObjectID, error) {
	now := time.Now()
	report.Status = ReportPending
	report.CreatedAt = now
	report.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, report)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert report: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)

	return id, nil
}

// ScoreResult is the AI verdict recorded onto a report.
type ScoreResult struct {
	Decision   enum.ReportDecision
	Confidence float64
	Reasons    []string
	Severity   int
}

// ApplyScore records the AI verdict and the resulting lifecycle state.
// The update is guarded on status=PENDING so a duplicate scoring job
// cannot overwrite a report that has already advanced.
func (r *ReportRepo) ApplyScore(
	ctx context.Context, id primitive.ObjectID,
	score ScoreResult, status ReportStatus, actionTaken string, removingContent bool,
) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": ReportPending},
		bson.M{"$set": bson.M{
			"aiDecision":        score.Decision,
			"aiConfidence":      score.Confidence,
			"aiReasons":         score.Reasons,
			"severity":          score.Severity,
			"status":            status,
			"actionTaken":       actionTaken,
			"isRemovingContent": removingContent,
			"updatedAt":         time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to apply report score: %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}

// Resolve finalizes a report after a human decision. Guarded on
// status=REVIEWING so concurrent moderator actions serialize: the loser
// matches nothing and gets ErrNotFound.
func (r *ReportRepo) Resolve(
	ctx context.Context, id primitive.ObjectID,
	status ReportStatus, actionTaken string, reasons []string, severity int, removingContent bool,
) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": ReportReviewing},
		bson.M{"$set": bson.M{
			"status":            status,
			"actionTaken":       actionTaken,
			"aiReasons":         reasons,
			"severity":          severity,
			"isRemovingContent": removingContent,
			"updatedAt":         time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to resolve report: %w", err)
	}

	if res.MatchedCount == 0 {
		return ErrNotFound
	}

	return nil
}
