// Package worker runs the queue consumer loops that drive moderation,
// versioning, and trust updates.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/askora/askora/internal/content"
	"github.com/askora/askora/internal/moderation"
	"github.com/askora/askora/internal/queue"
	"github.com/askora/askora/internal/setup"
	"github.com/askora/askora/internal/versioning"
	"github.com/askora/askora/pkg/utils"
	"go.uber.org/zap"
)

// errorDelay is how long a worker pauses after an infrastructure error
// before polling again.
const errorDelay = 5 * time.Second

// Handler processes one claimed job envelope.
type Handler func(ctx context.Context, envelope *queue.Envelope) error

// Worker consumes a single queue: claim a job, run the handler, classify
// the outcome. Terminal failures drop the job; everything else goes back
// to the queue with backoff until the attempt budget runs out.
type Worker struct {
	name       string
	queueName  string
	client     *queue.Client
	handler    Handler
	limiter    *jobRateLimiter
	emptyDelay time.Duration
	logger     *zap.Logger
}

// New creates a worker for the named queue.
func New(app *setup.App, name, queueName string, handler Handler, logger *zap.Logger) *Worker {
	cfg := app.Config.Worker

	return &Worker{
		name:      name,
		queueName: queueName,
		client:    app.Queue,
		handler:   handler,
		limiter: newJobRateLimiter(
			time.Duration(cfg.JobInterval)*time.Millisecond,
			time.Duration(cfg.JobJitter)*time.Millisecond,
		),
		emptyDelay: time.Duration(cfg.EmptyQueueDelay) * time.Millisecond,
		logger:     logger.Named(name),
	}
}

// Start runs the worker loop until the context is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started", zap.String("queue", w.queueName))

	for {
		if utils.ContextGuard(ctx) {
			w.logger.Info("Context cancelled, stopping worker")
			return
		}

		w.limiter.waitForNextSlot()

		envelope, err := w.client.Dequeue(ctx, w.queueName)
		if err != nil {
			if errors.Is(err, queue.ErrQueueEmpty) {
				utils.ContextSleep(ctx, w.emptyDelay)
				continue
			}

			w.logger.Error("Failed to dequeue job", zap.Error(err))
			utils.ContextSleepWithLog(ctx, errorDelay, w.logger, "Context cancelled during error wait")

			continue
		}

		w.process(ctx, envelope)
	}
}

func (w *Worker) process(ctx context.Context, envelope *queue.Envelope) {
	err := w.handler(ctx, envelope)
	if err == nil {
		w.logger.Debug("Processed job", zap.String("job_id", envelope.ID))
		return
	}

	if isTerminal(err) {
		w.logger.Info("Dropped job",
			zap.String("job_id", envelope.ID),
			zap.String("reason", err.Error()))

		return
	}

	w.logger.Warn("Job failed, retrying",
		zap.String("job_id", envelope.ID),
		zap.Int("attempts", envelope.Attempts),
		zap.Error(err))

	if err := w.client.Retry(ctx, w.queueName, envelope); err != nil && !errors.Is(err, queue.ErrJobParked) {
		w.logger.Error("Failed to retry job",
			zap.String("job_id", envelope.ID),
			zap.Error(err))
	}
}

// isTerminal reports whether the failure can never succeed on retry:
// missing or already-processed targets and violated preconditions. Only
// transient dependency failures are worth re-running.
func isTerminal(err error) bool {
	return errors.Is(err, content.ErrNotFound) ||
		errors.Is(err, moderation.ErrInvalidState) ||
		errors.Is(err, moderation.ErrDurationRequired) ||
		errors.Is(err, versioning.ErrNoChanges) ||
		errors.Is(err, versioning.ErrInvalidRollback) ||
		errors.Is(err, errMalformedPayload)
}
