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

// AnswerRepo handles document operations for answers.
type AnswerRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// Get retrieves an answer by ID.
func (r *AnswerRepo) Get(ctx context.Context, id primitive.ObjectID) (*Answer, error) {
	answer := new(Answer)

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(answer)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get answer: %w", err)
	}

	return answer, nil
}

// AdvanceStatus moves the answer's moderation status forward; regressions
// are silent no-ops.
func (r *AnswerRepo) AdvanceStatus(ctx context.Context, id primitive.ObjectID, status ModerationStatus) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "moderationStatus": bson.M{"$in": statusesBelow(status)}},
		bson.M{"$set": bson.M{"moderationStatus": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to advance answer status: %w", err)
	}

	return nil
}

// Deactivate hides an answer from the public surface.
func (r *AnswerRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate answer: %w", err)
	}

	return nil
}
