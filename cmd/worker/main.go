package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/askora/askora/internal/setup"
	"github.com/askora/askora/internal/worker"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	// ContentWorker moderates newly created content.
	ContentWorker = "content"
	// ReportWorker scores user-filed reports.
	ReportWorker = "report"
	// VersioningWorker applies question edits as new versions.
	VersioningWorker = "versioning"
	// TrustWorker applies trust score and strike updates.
	TrustWorker = "trust"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "worker",
		Usage: "Start the askora moderation workers",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Value:   1,
				Usage:   "Number of workers to start",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  ContentWorker,
				Usage: "Start content moderation workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, ContentWorker, c.Int("workers"))
					return nil
				},
			},
			{
				Name:  ReportWorker,
				Usage: "Start report moderation workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, ReportWorker, c.Int("workers"))
					return nil
				},
			},
			{
				Name:  VersioningWorker,
				Usage: "Start question versioning workers",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, VersioningWorker, c.Int("workers"))
					return nil
				},
			},
			{
				Name:  TrustWorker,
				Usage: "Start trust metrics worker",
				Action: func(ctx context.Context, c *cli.Command) error {
					runWorkers(ctx, TrustWorker, c.Int("workers"))
					return nil
				},
			},
		},
	}

	return app.Run(context.Background(), os.Args)
}

// runWorkers starts multiple instances of a worker type and blocks until
// they all stop.
func runWorkers(ctx context.Context, workerType string, count int64) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := setup.InitializeApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.Cleanup(context.WithoutCancel(ctx))

	var wg sync.WaitGroup

	for i := range count {
		wg.Add(1)

		go func(workerID int64) {
			defer wg.Done()

			workerLogger := app.Logger.With(
				zap.String("worker_type", workerType),
				zap.Int64("worker_id", workerID),
			)

			var w *worker.Worker

			switch workerType {
			case ContentWorker:
				w = worker.NewContentWorker(app, workerLogger)
			case ReportWorker:
				w = worker.NewReportWorker(app, workerLogger)
			case VersioningWorker:
				w = worker.NewVersioningWorker(app, workerLogger)
			case TrustWorker:
				w = worker.NewTrustWorker(app, workerLogger)
			default:
				log.Fatalf("Invalid worker type: %s", workerType)
			}

			runWorker(ctx, w, workerLogger)
		}(i)
	}

	log.Printf("Started %d %s workers", count, workerType)
	wg.Wait()
	log.Println("All workers have finished. Exiting.")
}

// runWorker runs a single worker in a loop with panic recovery.
func runWorker(ctx context.Context, w *worker.Worker, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("Context cancelled, stopping worker")
			return
		default:
			func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Error("Worker execution failed",
							zap.String("worker_type", fmt.Sprintf("%T", w)),
							zap.Any("panic", r),
						)
						logger.Info("Restarting worker in 5 seconds...")
						time.Sleep(5 * time.Second)
					}
				}()

				logger.Info("Starting worker")
				w.Start(ctx)
			}()
		}
	}
}
