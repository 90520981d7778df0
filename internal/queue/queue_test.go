package queue_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/askora/askora/internal/queue"
	"github.com/askora/askora/internal/setup/config"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupTest(t *testing.T) (*queue.Client, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	cfg := &config.Worker{
		MaxJobAttempts: 3,
		RetryDelay:     60000,
	}

	queueClient := queue.NewClient(client, cfg, zaptest.NewLogger(t))

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return queueClient, cleanup
}

func TestEnqueueDequeueRoundtrip(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	job := &queue.ReportJob{ReportID: "66f0a1b2c3d4e5f6a7b8c9d0"}

	err := client.Enqueue(ctx, queue.ReportModerationQueue, job, "")
	require.NoError(t, err)

	envelope, err := client.Dequeue(ctx, queue.ReportModerationQueue)
	require.NoError(t, err)
	assert.NotEmpty(t, envelope.ID)
	assert.Zero(t, envelope.Attempts)

	decoded, err := queue.DecodePayload[queue.ReportJob](envelope)
	require.NoError(t, err)
	assert.Equal(t, job.ReportID, decoded.ReportID)

	// The claimed job must be gone.
	size, err := client.Size(ctx, queue.ReportModerationQueue)
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestDequeueEmptyQueue(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	_, err := client.Dequeue(t.Context(), queue.ContentModerationQueue)
	require.ErrorIs(t, err, queue.ErrQueueEmpty)
}

func TestEnqueueDeduplicates(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	job := &queue.TrustJob{UserID: "user-1", Decision: "WARN"}

	err := client.Enqueue(ctx, queue.TrustMetricsQueue, job, "user-1:WARN")
	require.NoError(t, err)

	err = client.Enqueue(ctx, queue.TrustMetricsQueue, job, "user-1:WARN")
	require.ErrorIs(t, err, queue.ErrDuplicateJob)

	size, err := client.Size(ctx, queue.TrustMetricsQueue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestRetryDefersJob(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	job := &queue.ReportJob{ReportID: "66f0a1b2c3d4e5f6a7b8c9d0"}

	require.NoError(t, client.Enqueue(ctx, queue.ReportModerationQueue, job, ""))

	envelope, err := client.Dequeue(ctx, queue.ReportModerationQueue)
	require.NoError(t, err)

	err = client.Retry(ctx, queue.ReportModerationQueue, envelope)
	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Attempts)

	// The job is back in the queue but not ready until the backoff lapses.
	size, err := client.Size(ctx, queue.ReportModerationQueue)
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)

	_, err = client.Dequeue(ctx, queue.ReportModerationQueue)
	require.ErrorIs(t, err, queue.ErrQueueEmpty)
}

func TestRetryParksAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	client, cleanup := setupTest(t)
	defer cleanup()

	ctx := t.Context()
	job := &queue.ReportJob{ReportID: "66f0a1b2c3d4e5f6a7b8c9d0"}

	require.NoError(t, client.Enqueue(ctx, queue.ReportModerationQueue, job, ""))

	envelope, err := client.Dequeue(ctx, queue.ReportModerationQueue)
	require.NoError(t, err)

	require.NoError(t, client.Retry(ctx, queue.ReportModerationQueue, envelope))
	require.NoError(t, client.Retry(ctx, queue.ReportModerationQueue, envelope))

	err = client.Retry(ctx, queue.ReportModerationQueue, envelope)
	require.ErrorIs(t, err, queue.ErrJobParked)

	parked, err := client.Parked(ctx, queue.ReportModerationQueue)
	require.NoError(t, err)
	require.Len(t, parked, 1)
	assert.Equal(t, envelope.ID, parked[0].ID)
	assert.Equal(t, 3, parked[0].Attempts)
}
