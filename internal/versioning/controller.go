// Package versioning owns a question's edit history: version creation,
// the single-active-version invariant, and forward-only rollback.
package versioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/askora/askora/internal/cache"
	"github.com/askora/askora/internal/content"
	"github.com/askora/askora/internal/queue"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrNoChanges indicates an edit whose title, body, and tag set all
	// match the current active version.
	ErrNoChanges = errors.New("edit does not change the active version")
	// ErrInvalidRollback indicates the rollback target is not a strictly
	// older, inactive version.
	ErrInvalidRollback = errors.New("rollback target is not an older inactive version")
)

// questionStore is the slice of the question repository the controller
// touches.
type questionStore interface {
	Get(ctx context.Context, id primitive.ObjectID) (*content.Question, error)
	Insert(ctx context.Context, question *content.Question) (primitive.ObjectID, error)
	SetCurrentVersion(ctx context.Context, id primitive.ObjectID, version int, title, body string, tags []string) error
}

// versionStore is the slice of the version repository the controller
// touches.
type versionStore interface {
	GetByVersion(ctx context.Context, questionID primitive.ObjectID, version int) (*content.QuestionVersion, error)
	GetLatest(ctx context.Context, questionID primitive.ObjectID) (*content.QuestionVersion, error)
	GetActive(ctx context.Context, questionID primitive.ObjectID) (*content.QuestionVersion, error)
	History(ctx context.Context, questionID primitive.ObjectID) ([]*content.QuestionVersion, error)
	Insert(ctx context.Context, v *content.QuestionVersion) error
	DeactivateActive(ctx context.Context, questionID primitive.ObjectID) error
	MarkSupersededAbove(ctx context.Context, questionID primitive.ObjectID, version int) error
}

// transactor runs a function inside one document-store transaction.
type transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Controller creates question versions and performs rollbacks. Version
// numbers are read from the store at processing time and never reused, so
// racing edits cannot collide and rollbacks always move forward.
type Controller struct {
	tx          transactor
	questions   questionStore
	versions    versionStore
	queue       *queue.Client
	invalidator *cache.Invalidator
	logger      *zap.Logger
}

// NewController creates a new version controller.
func NewController(
	store *content.Store, queueClient *queue.Client,
	invalidator *cache.Invalidator, logger *zap.Logger,
) *Controller {
	return &Controller{
		tx:          store,
		questions:   store.Questions(),
		versions:    store.Versions(),
		queue:       queueClient,
		invalidator: invalidator,
		logger:      logger.Named("versioning"),
	}
}

// Create inserts a new question with its initial version. Both documents
// are written in one transaction; version 1 is based on itself and starts
// PENDING until the moderation pipeline clears it.
func (c *Controller) Create(ctx context.Context, question *content.Question) (primitive.ObjectID, error) {
	question.CurrentVersion = 1
	question.ModerationStatus = content.StatusPending
	question.IsActive = true

	var questionID primitive.ObjectID

	err := c.tx.WithTransaction(ctx, func(ctx context.Context) error {
		id, err := c.questions.Insert(ctx, question)
		if err != nil {
			return err
		}

		questionID = id

		return c.versions.Insert(ctx, &content.QuestionVersion{
			QuestionID:       id,
			Version:          1,
			Title:            question.Title,
			Body:             question.Body,
			Tags:             question.Tags,
			EditedBy:         content.EditedByUser,
			EditorID:         question.UserID,
			BasedOnVersion:   1,
			IsActive:         true,
			ModerationStatus: content.StatusPending,
		})
	})
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("failed to create question: %w", err)
	}

	c.enqueueModeration(ctx, questionID, 1)

	return questionID, nil
}

// Edit applies a question edit as a new version. The edit must change at
// least one of title, body, or the tag set; tag comparison ignores order.
func (c *Controller) Edit(ctx context.Context, job *queue.VersioningJob) error {
	questionID, err := primitive.ObjectIDFromHex(job.QuestionID)
	if err != nil {
		return fmt.Errorf("%w: %w", content.ErrNotFound, err)
	}

	active, err := c.versions.GetActive(ctx, questionID)
	if err != nil {
		return err
	}

	if job.Title == active.Title && job.Body == active.Body && sameTagSet(job.Tags, active.Tags) {
		return ErrNoChanges
	}

	latest, err := c.versions.GetLatest(ctx, questionID)
	if err != nil {
		return err
	}

	next := latest.Version + 1

	err = c.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := c.versions.DeactivateActive(ctx, questionID); err != nil {
			return err
		}

		err := c.versions.Insert(ctx, &content.QuestionVersion{
			QuestionID:       questionID,
			Version:          next,
			Title:            job.Title,
			Body:             job.Body,
			Tags:             job.Tags,
			EditedBy:         content.EditedBy(job.EditedBy),
			EditorID:         job.EditorID,
			BasedOnVersion:   active.Version,
			IsActive:         true,
			ModerationStatus: content.StatusPending,
		})
		if err != nil {
			return err
		}

		return c.questions.SetCurrentVersion(ctx, questionID, next, job.Title, job.Body, job.Tags)
	})
	if err != nil {
		return fmt.Errorf("failed to apply edit: %w", err)
	}

	c.logger.Info("Created question version",
		zap.String("question_id", job.QuestionID),
		zap.Int("version", next),
		zap.Int("based_on", active.Version))

	c.invalidate(ctx, job.QuestionID, next)
	c.enqueueModeration(ctx, questionID, next)

	return nil
}

// Rollback restores an older version's content as a brand-new version.
// The target must be strictly older than the current version and inactive;
// newer versions are kept and marked superseded, never deleted.
func (c *Controller) Rollback(ctx context.Context, questionIDHex string, targetVersion int, editorID string) error {
	questionID, err := primitive.ObjectIDFromHex(questionIDHex)
	if err != nil {
		return fmt.Errorf("%w: %w", content.ErrNotFound, err)
	}

	question, err := c.questions.Get(ctx, questionID)
	if err != nil {
		return err
	}

	if targetVersion >= question.CurrentVersion {
		return fmt.Errorf("%w: version %d is not older than current %d",
			ErrInvalidRollback, targetVersion, question.CurrentVersion)
	}

	target, err := c.versions.GetByVersion(ctx, questionID, targetVersion)
	if err != nil {
		return err
	}

	if target.IsActive {
		return fmt.Errorf("%w: version %d is still active", ErrInvalidRollback, targetVersion)
	}

	latest, err := c.versions.GetLatest(ctx, questionID)
	if err != nil {
		return err
	}

	next := latest.Version + 1

	err = c.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := c.versions.DeactivateActive(ctx, questionID); err != nil {
			return err
		}

		if err := c.versions.MarkSupersededAbove(ctx, questionID, targetVersion); err != nil {
			return err
		}

		// The new version carries the target's moderation status: the
		// content is byte-identical to an already-moderated snapshot.
		err := c.versions.Insert(ctx, &content.QuestionVersion{
			QuestionID:       questionID,
			Version:          next,
			Title:            target.Title,
			Body:             target.Body,
			Tags:             target.Tags,
			EditedBy:         content.EditedByUser,
			EditorID:         editorID,
			BasedOnVersion:   targetVersion,
			IsActive:         true,
			ModerationStatus: target.ModerationStatus,
		})
		if err != nil {
			return err
		}

		return c.questions.SetCurrentVersion(ctx, questionID, next, target.Title, target.Body, target.Tags)
	})
	if err != nil {
		return fmt.Errorf("failed to roll back: %w", err)
	}

	c.logger.Info("Rolled back question",
		zap.String("question_id", questionIDHex),
		zap.Int("target_version", targetVersion),
		zap.Int("new_version", next))

	c.invalidate(ctx, questionIDHex, next)

	// A target that was never cleared still needs scoring. Re-delivery of
	// an already-moderated version is dropped by the pipeline's status
	// guard, so this cannot double-apply a decision.
	if target.ModerationStatus == content.StatusPending {
		c.enqueueModeration(ctx, questionID, next)
	}

	return nil
}

// History returns a question's full version trail, newest first.
func (c *Controller) History(ctx context.Context, questionIDHex string) ([]*content.QuestionVersion, error) {
	questionID, err := primitive.ObjectIDFromHex(questionIDHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrNotFound, err)
	}

	return c.versions.History(ctx, questionID)
}

func (c *Controller) enqueueModeration(ctx context.Context, questionID primitive.ObjectID, version int) {
	job := &queue.ContentJob{
		ContentID:   questionID.Hex(),
		ContentType: "QUESTION",
		Version:     &version,
	}

	dedupKey := fmt.Sprintf("QUESTION:%s:%d", questionID.Hex(), version)

	err := c.queue.Enqueue(ctx, queue.ContentModerationQueue, job, dedupKey)
	if err != nil && !errors.Is(err, queue.ErrDuplicateJob) {
		c.logger.Warn("Failed to enqueue version moderation",
			zap.String("question_id", questionID.Hex()),
			zap.Int("version", version),
			zap.Error(err))
	}
}

func (c *Controller) invalidate(ctx context.Context, questionID string, version int) {
	c.invalidator.InvalidateContent(ctx, questionID)
	c.invalidator.InvalidateVersion(ctx, questionID, version)
	c.invalidator.InvalidateVersionHistory(ctx, questionID)
}

// sameTagSet compares tag slices as sets, ignoring order and duplicates.
func sameTagSet(a, b []string) bool {
	setA := make(map[string]struct{}, len(a))
	for _, tag := range a {
		setA[tag] = struct{}{}
	}

	setB := make(map[string]struct{}, len(b))
	for _, tag := range b {
		setB[tag] = struct{}{}
	}

	if len(setA) != len(setB) {
		return false
	}

	for tag := range setA {
		if _, ok := setB[tag]; !ok {
			return false
		}
	}

	return true
}
