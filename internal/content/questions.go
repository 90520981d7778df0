package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// QuestionRepo handles document operations for questions.
type QuestionRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// Get retrieves a question by ID.
func (r *QuestionRepo) Get(ctx context.Context, id primitive.ObjectID) (*Question, error) {
	question := new(Question)

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(question)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return question, nil
}

// Insert creates a new question document.
func (r *QuestionRepo) Insert(ctx context.Context, question *Question) (primitive.ObjectID, error) {
	now := time.Now()
	question.CreatedAt = now
	question.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, question)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to insert question: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)

	return id, nil
}

// AdvanceStatus moves the question's moderation status forward. The filter
// matches only lower-ranked statuses, so a regression attempt matches
// nothing and is a silent no-op. This is what makes duplicate moderation
// jobs idempotent.
func (r *QuestionRepo) AdvanceStatus(ctx context.Context, id primitive.ObjectID, status ModerationStatus) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "moderationStatus": bson.M{"$in": statusesBelow(status)}},
		bson.M{"$set": bson.M{"moderationStatus": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to advance question status: %w", err)
	}

	return nil
}

// Deactivate hides a question from the public surface.
func (r *QuestionRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate question: %w", err)
	}

	return nil
}

// SetCurrentVersion updates the question's denormalized content fields to
// reflect a new active version.
func (r *QuestionRepo) SetCurrentVersion(
	ctx context.Context, id primitive.ObjectID, version int, title, body string, tags []string,
) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"currentVersion": version,
			"title":          title,
			"body":           body,
			"tags":           tags,
			"updatedAt":      time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to set current version: %w", err)
	}

	return nil
}
