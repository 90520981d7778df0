package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/moderation"
	"github.com/askora/askora/internal/queue"
	"github.com/askora/askora/internal/setup"
	"github.com/askora/askora/internal/versioning"
	"go.uber.org/zap"
)

// errMalformedPayload marks a job whose payload cannot be decoded or
// validated. Retrying cannot fix the bytes, so the job is dropped.
var errMalformedPayload = errors.New("malformed job payload")

// NewContentWorker builds the worker that moderates newly created content.
func NewContentWorker(app *setup.App, logger *zap.Logger) *Worker {
	enforcer := moderation.NewEnforcer(app.DB, app.Notifier, logger)
	pipeline := moderation.NewContentPipeline(
		app.DB, app.Store, app.Scorer, app.Queue,
		enforcer, app.Notifier, app.Invalidator, logger,
	)

	handler := func(ctx context.Context, envelope *queue.Envelope) error {
		job, err := queue.DecodePayload[queue.ContentJob](envelope)
		if err != nil {
			return fmt.Errorf("%w: %w", errMalformedPayload, err)
		}

		return pipeline.Process(ctx, job)
	}

	return New(app, "content_worker", queue.ContentModerationQueue, handler, logger)
}

// NewReportWorker builds the worker that scores user-filed reports.
func NewReportWorker(app *setup.App, logger *zap.Logger) *Worker {
	enforcer := moderation.NewEnforcer(app.DB, app.Notifier, logger)
	pipeline := moderation.NewReportPipeline(
		app.Store, app.Scorer, enforcer, app.Notifier, app.Invalidator, logger,
	)

	handler := func(ctx context.Context, envelope *queue.Envelope) error {
		job, err := queue.DecodePayload[queue.ReportJob](envelope)
		if err != nil {
			return fmt.Errorf("%w: %w", errMalformedPayload, err)
		}

		return pipeline.Process(ctx, job)
	}

	return New(app, "report_worker", queue.ReportModerationQueue, handler, logger)
}

// NewVersioningWorker builds the worker that applies question edits.
func NewVersioningWorker(app *setup.App, logger *zap.Logger) *Worker {
	controller := versioning.NewController(app.Store, app.Queue, app.Invalidator, logger)

	handler := func(ctx context.Context, envelope *queue.Envelope) error {
		job, err := queue.DecodePayload[queue.VersioningJob](envelope)
		if err != nil {
			return fmt.Errorf("%w: %w", errMalformedPayload, err)
		}

		return controller.Edit(ctx, job)
	}

	return New(app, "versioning_worker", queue.VersioningQueue, handler, logger)
}

// NewTrustWorker builds the worker that applies trust and strike deltas.
func NewTrustWorker(app *setup.App, logger *zap.Logger) *Worker {
	ledger := moderation.NewTrustLedger(app.DB, logger)

	handler := func(ctx context.Context, envelope *queue.Envelope) error {
		job, err := queue.DecodePayload[queue.TrustJob](envelope)
		if err != nil {
			return fmt.Errorf("%w: %w", errMalformedPayload, err)
		}

		return ledger.Apply(ctx, job.UserID, enum.Decision(job.Decision))
	}

	return New(app, "trust_worker", queue.TrustMetricsQueue, handler, logger)
}
