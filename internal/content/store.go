package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/askora/askora/internal/setup/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ErrNotFound indicates the requested document does not exist or is no
// longer active.
var ErrNotFound = errors.New("content not found")

const (
	questionsName = "questions"
	answersName   = "answers"
	repliesName   = "replies"
	versionsName  = "question_versions"
	reportsName   = "reports"
)

// Store wraps the document database and exposes one repository per
// collection. The store is the only writer for these collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger

	questions *QuestionRepo
	answers   *AnswerRepo
	replies   *ReplyRepo
	versions  *VersionRepo
	reports   *ReportRepo
}

// Connect establishes the document store connection and wires up the
// per-collection repositories.
func Connect(ctx context.Context, cfg *config.MongoDB, logger *zap.Logger) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping document store: %w", err)
	}

	db := client.Database(cfg.DBName)

	s := &Store{
		client: client,
		db:     db,
		logger: logger.Named("content"),
	}
	s.questions = &QuestionRepo{coll: db.Collection(questionsName), logger: s.logger}
	s.answers = &AnswerRepo{coll: db.Collection(answersName), logger: s.logger}
	s.replies = &ReplyRepo{coll: db.Collection(repliesName), logger: s.logger}
	s.versions = &VersionRepo{coll: db.Collection(versionsName), logger: s.logger}
	s.reports = &ReportRepo{coll: db.Collection(reportsName), logger: s.logger}

	s.logger.Info("Document store connection established")

	return s, nil
}

// Questions returns the question repository.
func (s *Store) Questions() *QuestionRepo { return s.questions }

// Answers returns the answer repository.
func (s *Store) Answers() *AnswerRepo { return s.answers }

// Replies returns the reply repository.
func (s *Store) Replies() *ReplyRepo { return s.replies }

// Versions returns the question version repository.
func (s *Store) Versions() *VersionRepo { return s.versions }

// Reports returns the report repository.
func (s *Store) Reports() *ReportRepo { return s.reports }

// WithTransaction runs fn inside a single document-store transaction.
// The context passed to fn carries the session and must be used for every
// operation that belongs to the transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})

	return err
}

// EnsureIndexes creates the indexes the pipeline depends on, most
// importantly the partial unique index guaranteeing exactly one active
// version per question.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(versionsName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "questionId", Value: 1}, {Key: "isActive", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "isActive", Value: true}}),
		},
		{
			Keys:    bson.D{{Key: "questionId", Value: 1}, {Key: "version", Value: -1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create version indexes: %w", err)
	}

	_, err = s.db.Collection(reportsName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create report index: %w", err)
	}

	return nil
}

// Close disconnects from the document store.
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		s.logger.Error("Failed to disconnect document store", zap.Error(err))
		return err
	}

	s.logger.Info("Document store connection closed")

	return nil
}
