package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// VersionRepo handles document operations for question versions.
type VersionRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// GetByVersion retrieves a specific version of a question.
func (r *VersionRepo) GetByVersion(ctx context.Context, questionID primitive.ObjectID, version int) (*QuestionVersion, error) {
	v := new(QuestionVersion)

	err := r.coll.FindOne(ctx, bson.M{"questionId": questionID, "version": version}).Decode(v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get question version: %w", err)
	}

	return v, nil
}

// GetLatest retrieves the highest-numbered version of a question, or
// ErrNotFound if the question has no versions yet.
func (r *VersionRepo) GetLatest(ctx context.Context, questionID primitive.ObjectID) (*QuestionVersion, error) {
	v := new(QuestionVersion)

	err := r.coll.FindOne(ctx,
		bson.M{"questionId": questionID},
		options.FindOne().SetSort(bson.D{{Key: "version", Value: -1}}),
	).Decode(v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get latest version: %w", err)
	}

	return v, nil
}

// GetActive retrieves the single active version of a question.
func (r *VersionRepo) GetActive(ctx context.Context, questionID primitive.ObjectID) (*QuestionVersion, error) {
	v := new(QuestionVersion)

	err := r.coll.FindOne(ctx, bson.M{"questionId": questionID, "isActive": true}).Decode(v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get active version: %w", err)
	}

	return v, nil
}

// History returns all versions of a question, newest first.
func (r *VersionRepo) History(ctx context.Context, questionID primitive.ObjectID) ([]*QuestionVersion, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"questionId": questionID},
		options.Find().SetSort(bson.D{{Key: "version", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	var versions []*QuestionVersion
	if err := cursor.All(ctx, &versions); err != nil {
		return nil, fmt.Errorf("failed to decode versions: %w", err)
	}

	return versions, nil
}

// Insert creates a new version snapshot.
func (r *VersionRepo) Insert(ctx context.Context, v *QuestionVersion) error {
	v.CreatedAt = time.Now()

	if _, err := r.coll.InsertOne(ctx, v); err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}

	return nil
}

// DeactivateActive flips the currently active version to inactive. Must be
// paired with an Insert of the replacement version in the same transaction
// to preserve the single-active-version invariant.
func (r *VersionRepo) DeactivateActive(ctx context.Context, questionID primitive.ObjectID) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"questionId": questionID, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate active version: %w", err)
	}

	return nil
}

// MarkSupersededAbove flags every inactive version newer than the rollback
// target as superseded. The rows stay in place as a provenance trail.
func (r *VersionRepo) MarkSupersededAbove(ctx context.Context, questionID primitive.ObjectID, version int) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{"questionId": questionID, "version": bson.M{"$gt": version}, "isActive": false},
		bson.M{"$set": bson.M{"supersededByRollback": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark superseded versions: %w", err)
	}

	return nil
}

// AdvanceStatus moves a version's moderation status forward; regressions
// are silent no-ops.
func (r *VersionRepo) AdvanceStatus(
	ctx context.Context, questionID primitive.ObjectID, version int, status ModerationStatus,
) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{
			"questionId":       questionID,
			"version":          version,
			"moderationStatus": bson.M{"$in": statusesBelow(status)},
		},
		bson.M{"$set": bson.M{"moderationStatus": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to advance version status: %w", err)
	}

	return nil
}
