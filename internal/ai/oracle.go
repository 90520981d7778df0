// Package ai implements the risk scorer and its classification oracle
// client. The oracle is consumed synchronously with a bounded timeout and
// fail-safe defaults, so a sustained scoring outage caps report outcomes
// at a warning instead of auto-approving or auto-banning.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/askora/askora/internal/setup/config"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// ErrOracleUnavailable is returned when the circuit breaker is open.
var ErrOracleUnavailable = errors.New("classification oracle unavailable")

// Verdict is the oracle's raw classification of a piece of text.
type Verdict struct {
	Flagged        bool
	Categories     map[string]bool
	CategoryScores map[string]float64
}

// Oracle classifies text for policy violations.
type Oracle interface {
	Moderate(ctx context.Context, text string) (*Verdict, error)
}

// OracleClient implements Oracle against the moderations endpoint, guarded
// by a circuit breaker and a concurrency cap.
type OracleClient struct {
	client    *openai.Client
	breaker   *gobreaker.CircuitBreaker
	semaphore *semaphore.Weighted
	model     string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewOracleClient creates a new oracle client from config.
func NewOracleClient(cfg *config.Oracle, logger *zap.Logger) *OracleClient {
	timeout := time.Duration(cfg.RequestTimeout) * time.Millisecond

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	client := openai.NewClient(opts...)

	settings := gobreaker.Settings{
		Name:        "oracle",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	return &OracleClient{
		client:    &client,
		breaker:   gobreaker.NewCircuitBreaker(settings),
		semaphore: semaphore.NewWeighted(maxConcurrent),
		model:     cfg.Model,
		timeout:   timeout,
		logger:    logger.Named("oracle"),
	}
}

// Moderate classifies the given text through the moderations endpoint.
func (c *OracleClient) Moderate(ctx context.Context, text string) (*Verdict, error) {
	if err := c.semaphore.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.semaphore.Release(1)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (any, error) {
		res, err := c.client.Moderations.New(ctx, openai.ModerationNewParams{
			Input: openai.ModerationNewParamsInputUnion{OfString: openai.String(text)},
			Model: openai.ModerationModel(c.model),
		})
		if err != nil {
			return nil, fmt.Errorf("moderation request failed: %w", err)
		}

		if len(res.Results) == 0 {
			return nil, errors.New("moderation response contained no results")
		}

		return &res.Results[0], nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrOracleUnavailable
		}

		return nil, err
	}

	mod := result.(*openai.Moderation)
	cats := mod.Categories
	scores := mod.CategoryScores

	return &Verdict{
		Flagged: mod.Flagged,
		Categories: map[string]bool{
			"harassment":             cats.Harassment,
			"harassment/threatening": cats.HarassmentThreatening,
			"hate":                   cats.Hate,
			"hate/threatening":       cats.HateThreatening,
			"sexual":                 cats.Sexual,
			"sexual/minors":          cats.SexualMinors,
			"violence":               cats.Violence,
			"violence/graphic":       cats.ViolenceGraphic,
		},
		CategoryScores: map[string]float64{
			"harassment":             scores.Harassment,
			"harassment/threatening": scores.HarassmentThreatening,
			"hate":                   scores.Hate,
			"hate/threatening":       scores.HateThreatening,
			"sexual":                 scores.Sexual,
			"sexual/minors":          scores.SexualMinors,
			"violence":               scores.Violence,
			"violence/graphic":       scores.ViolenceGraphic,
		},
	}, nil
}
