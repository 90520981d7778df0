package versioning

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/askora/askora/internal/cache"
	"github.com/askora/askora/internal/content"
	"github.com/askora/askora/internal/queue"
	"github.com/askora/askora/internal/setup/config"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap/zaptest"
)

// passTx runs the transaction body directly.
type passTx struct{}

func (passTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubQuestions struct {
	question       *content.Question
	currentVersion []int
}

func (s *stubQuestions) Get(_ context.Context, _ primitive.ObjectID) (*content.Question, error) {
	if s.question == nil {
		return nil, content.ErrNotFound
	}

	return s.question, nil
}

func (s *stubQuestions) Insert(_ context.Context, _ *content.Question) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}

func (s *stubQuestions) SetCurrentVersion(
	_ context.Context, _ primitive.ObjectID, version int, _, _ string, _ []string,
) error {
	s.currentVersion = append(s.currentVersion, version)
	return nil
}

type stubVersions struct {
	active          *content.QuestionVersion
	latest          *content.QuestionVersion
	byVersion       map[int]*content.QuestionVersion
	inserted        []*content.QuestionVersion
	deactivations   int
	supersededAbove []int
}

func (s *stubVersions) GetByVersion(_ context.Context, _ primitive.ObjectID, version int) (*content.QuestionVersion, error) {
	v, ok := s.byVersion[version]
	if !ok {
		return nil, content.ErrNotFound
	}

	return v, nil
}

func (s *stubVersions) GetLatest(_ context.Context, _ primitive.ObjectID) (*content.QuestionVersion, error) {
	if s.latest == nil {
		return nil, content.ErrNotFound
	}

	return s.latest, nil
}

func (s *stubVersions) GetActive(_ context.Context, _ primitive.ObjectID) (*content.QuestionVersion, error) {
	if s.active == nil {
		return nil, content.ErrNotFound
	}

	return s.active, nil
}

func (s *stubVersions) History(_ context.Context, _ primitive.ObjectID) ([]*content.QuestionVersion, error) {
	return nil, nil
}

func (s *stubVersions) Insert(_ context.Context, v *content.QuestionVersion) error {
	s.inserted = append(s.inserted, v)
	return nil
}

func (s *stubVersions) DeactivateActive(_ context.Context, _ primitive.ObjectID) error {
	s.deactivations++
	return nil
}

func (s *stubVersions) MarkSupersededAbove(_ context.Context, _ primitive.ObjectID, version int) error {
	s.supersededAbove = append(s.supersededAbove, version)
	return nil
}

func setupController(t *testing.T, questions *stubQuestions, versions *stubVersions) (*Controller, *queue.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	queueClient := queue.NewClient(client, &config.Worker{MaxJobAttempts: 3, RetryDelay: 60000}, logger)

	controller := &Controller{
		tx:          passTx{},
		questions:   questions,
		versions:    versions,
		queue:       queueClient,
		invalidator: cache.NewInvalidator(client, logger),
		logger:      logger,
	}

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return controller, queueClient, cleanup
}

func TestEditRejectsIdenticalContent(t *testing.T) {
	t.Parallel()

	versions := &stubVersions{
		active: &content.QuestionVersion{
			Version: 2,
			Title:   "How do sorted sets work?",
			Body:    "Full question body.",
			Tags:    []string{"redis", "go"},
		},
	}

	controller, _, cleanup := setupController(t, &stubQuestions{}, versions)
	defer cleanup()

	// Reordered tags are still the same tag set.
	err := controller.Edit(t.Context(), &queue.VersioningJob{
		QuestionID: primitive.NewObjectID().Hex(),
		Title:      "How do sorted sets work?",
		Body:       "Full question body.",
		Tags:       []string{"go", "redis"},
		EditedBy:   "USER",
		EditorID:   "user-1",
	})
	require.ErrorIs(t, err, ErrNoChanges)

	assert.Empty(t, versions.inserted)
	assert.Zero(t, versions.deactivations)
}

func TestEditCreatesNextVersion(t *testing.T) {
	t.Parallel()

	versions := &stubVersions{
		active: &content.QuestionVersion{
			Version: 2,
			Title:   "How do sorted sets work?",
			Body:    "Full question body.",
			Tags:    []string{"redis", "go"},
		},
		latest: &content.QuestionVersion{Version: 3},
	}
	questions := &stubQuestions{}

	controller, queueClient, cleanup := setupController(t, questions, versions)
	defer cleanup()

	ctx := t.Context()
	questionID := primitive.NewObjectID()

	err := controller.Edit(ctx, &queue.VersioningJob{
		QuestionID: questionID.Hex(),
		Title:      "How do sorted sets really work?",
		Body:       "Full question body.",
		Tags:       []string{"redis", "go"},
		EditedBy:   "USER",
		EditorID:   "user-1",
	})
	require.NoError(t, err)

	// Version numbers come from the latest stored version, not the active one.
	require.Len(t, versions.inserted, 1)
	assert.Equal(t, 4, versions.inserted[0].Version)
	assert.Equal(t, 2, versions.inserted[0].BasedOnVersion)
	assert.Equal(t, content.StatusPending, versions.inserted[0].ModerationStatus)
	assert.Equal(t, []int{4}, questions.currentVersion)

	envelope, err := queueClient.Dequeue(ctx, queue.ContentModerationQueue)
	require.NoError(t, err)

	job, err := queue.DecodePayload[queue.ContentJob](envelope)
	require.NoError(t, err)
	assert.Equal(t, questionID.Hex(), job.ContentID)
	require.NotNil(t, job.Version)
	assert.Equal(t, 4, *job.Version)
}

func TestRollbackRejectsNonOlderTarget(t *testing.T) {
	t.Parallel()

	questionID := primitive.NewObjectID()
	questions := &stubQuestions{
		question: &content.Question{ID: questionID, CurrentVersion: 3},
	}
	versions := &stubVersions{}

	controller, _, cleanup := setupController(t, questions, versions)
	defer cleanup()

	err := controller.Rollback(t.Context(), questionID.Hex(), 3, "user-1")
	require.ErrorIs(t, err, ErrInvalidRollback)

	err = controller.Rollback(t.Context(), questionID.Hex(), 5, "user-1")
	require.ErrorIs(t, err, ErrInvalidRollback)

	assert.Empty(t, versions.inserted)
}

func TestRollbackRejectsActiveTarget(t *testing.T) {
	t.Parallel()

	questionID := primitive.NewObjectID()
	questions := &stubQuestions{
		question: &content.Question{ID: questionID, CurrentVersion: 3},
	}
	versions := &stubVersions{
		byVersion: map[int]*content.QuestionVersion{
			1: {Version: 1, IsActive: true},
		},
	}

	controller, _, cleanup := setupController(t, questions, versions)
	defer cleanup()

	err := controller.Rollback(t.Context(), questionID.Hex(), 1, "user-1")
	require.ErrorIs(t, err, ErrInvalidRollback)

	assert.Empty(t, versions.inserted)
	assert.Zero(t, versions.deactivations)
}

func TestRollbackEnqueuesModerationForPendingTarget(t *testing.T) {
	t.Parallel()

	questionID := primitive.NewObjectID()
	questions := &stubQuestions{
		question: &content.Question{ID: questionID, CurrentVersion: 3},
	}
	versions := &stubVersions{
		byVersion: map[int]*content.QuestionVersion{
			1: {
				Version:          1,
				Title:            "Original title",
				Body:             "Original body.",
				Tags:             []string{"go"},
				ModerationStatus: content.StatusPending,
			},
		},
		latest: &content.QuestionVersion{Version: 3},
	}

	controller, queueClient, cleanup := setupController(t, questions, versions)
	defer cleanup()

	ctx := t.Context()

	err := controller.Rollback(ctx, questionID.Hex(), 1, "user-1")
	require.NoError(t, err)

	require.Len(t, versions.inserted, 1)
	assert.Equal(t, 4, versions.inserted[0].Version)
	assert.Equal(t, 1, versions.inserted[0].BasedOnVersion)
	assert.Equal(t, content.StatusPending, versions.inserted[0].ModerationStatus)
	assert.Equal(t, []int{1}, versions.supersededAbove)

	// An unscored snapshot going live again must be scored.
	envelope, err := queueClient.Dequeue(ctx, queue.ContentModerationQueue)
	require.NoError(t, err)

	job, err := queue.DecodePayload[queue.ContentJob](envelope)
	require.NoError(t, err)
	assert.Equal(t, questionID.Hex(), job.ContentID)
	require.NotNil(t, job.Version)
	assert.Equal(t, 4, *job.Version)
}

func TestRollbackSkipsModerationForClearedTarget(t *testing.T) {
	t.Parallel()

	questionID := primitive.NewObjectID()
	questions := &stubQuestions{
		question: &content.Question{ID: questionID, CurrentVersion: 3},
	}
	versions := &stubVersions{
		byVersion: map[int]*content.QuestionVersion{
			1: {
				Version:          1,
				Title:            "Original title",
				Body:             "Original body.",
				Tags:             []string{"go"},
				ModerationStatus: content.StatusApproved,
			},
		},
		latest: &content.QuestionVersion{Version: 3},
	}

	controller, queueClient, cleanup := setupController(t, questions, versions)
	defer cleanup()

	ctx := t.Context()

	err := controller.Rollback(ctx, questionID.Hex(), 1, "user-1")
	require.NoError(t, err)

	require.Len(t, versions.inserted, 1)
	assert.Equal(t, content.StatusApproved, versions.inserted[0].ModerationStatus)

	size, err := queueClient.Size(ctx, queue.ContentModerationQueue)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestSameTagSet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    []string
		b    []string
		want bool
	}{
		{"both empty", nil, nil, true},
		{"empty versus nil", []string{}, nil, true},
		{"identical order", []string{"go", "redis"}, []string{"go", "redis"}, true},
		{"different order", []string{"go", "redis"}, []string{"redis", "go"}, true},
		{"duplicates collapse", []string{"go", "go", "redis"}, []string{"redis", "go"}, true},
		{"extra tag", []string{"go", "redis"}, []string{"go", "redis", "mongo"}, false},
		{"missing tag", []string{"go", "redis"}, []string{"go"}, false},
		{"disjoint sets", []string{"go"}, []string{"rust"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, sameTagSet(tt.a, tt.b))
			assert.Equal(t, tt.want, sameTagSet(tt.b, tt.a))
		})
	}
}
