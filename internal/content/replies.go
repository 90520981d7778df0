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

// ReplyRepo handles document operations for replies.
type ReplyRepo struct {
	coll   *mongo.Collection
	logger *zap.Logger
}

// Get retrieves a reply by ID.
func (r *ReplyRepo) Get(ctx context.Context, id primitive.ObjectID) (*Reply, error) {
	reply := new(Reply)

	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(reply)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to get reply: %w", err)
	}

	return reply, nil
}

// AdvanceStatus moves the reply's moderation status forward; regressions
// are silent no-ops.
func (r *ReplyRepo) AdvanceStatus(ctx context.Context, id primitive.ObjectID, status ModerationStatus) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "moderationStatus": bson.M{"$in": statusesBelow(status)}},
		bson.M{"$set": bson.M{"moderationStatus": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to advance reply status: %w", err)
	}

	return nil
}

// Deactivate hides a reply from the public surface.
func (r *ReplyRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isActive": true},
		bson.M{"$set": bson.M{"isActive": false, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate reply: %w", err)
	}

	return nil
}
