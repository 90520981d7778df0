// Package queue implements the durable job queues that decouple content
// submission from moderation, versioning, and trust updates. Each queue is
// a Redis sorted set scored by ready time, so retry backoff is just a
// re-add with a future score.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/askora/askora/internal/setup/config"
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// DedupTTL bounds how long a dedup key suppresses identical jobs.
const DedupTTL = 10 * time.Minute

// Envelope wraps a job payload with queue bookkeeping.
type Envelope struct {
	ID         string          `json:"id"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	Payload    json.RawMessage `json:"payload"`

	// raw is the exact member string stored in the sorted set, kept so
	// Retry can re-add without a lossy re-marshal.
	raw string
}

// Client provides enqueue and dequeue operations over the queue database.
type Client struct {
	client      rueidis.Client
	logger      *zap.Logger
	maxAttempts int
	retryDelay  time.Duration
}

// NewClient creates a queue client on the given Redis connection.
func NewClient(client rueidis.Client, cfg *config.Worker, logger *zap.Logger) *Client {
	return &Client{
		client:      client,
		logger:      logger.Named("queue"),
		maxAttempts: cfg.MaxJobAttempts,
		retryDelay:  time.Duration(cfg.RetryDelay) * time.Millisecond,
	}
}

// Enqueue adds a job to the named queue. A non-empty dedupKey suppresses
// identical jobs for DedupTTL; duplicates return ErrDuplicateJob.
func (c *Client) Enqueue(ctx context.Context, queue string, payload any, dedupKey string) error {
	if dedupKey != "" {
		set, err := c.client.Do(ctx, c.client.B().Set().
			Key(dedupKeyFor(queue, dedupKey)).Value("1").
			Nx().Ex(DedupTTL).Build()).ToString()
		if err != nil && !rueidis.IsRedisNil(err) {
			return fmt.Errorf("failed to set dedup key: %w", err)
		}

		if set != "OK" {
			c.logger.Debug("Skipped duplicate job",
				zap.String("queue", queue),
				zap.String("dedup_key", dedupKey))

			return ErrDuplicateJob
		}
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	envelope := Envelope{
		ID:         uuid.New().String(),
		EnqueuedAt: time.Now(),
		Payload:    body,
	}

	member, err := sonic.Marshal(&envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal job envelope: %w", err)
	}

	return c.add(ctx, queue, string(member), time.Now())
}

// Dequeue claims the next ready job from the named queue. Jobs whose score
// is still in the future (retry backoff) are not returned. When several
// workers race for the same job, ZREM decides the winner.
func (c *Client) Dequeue(ctx context.Context, queue string) (*Envelope, error) {
	for {
		now := strconv.FormatInt(time.Now().Unix(), 10)

		members, err := c.client.Do(ctx, c.client.B().Zrangebyscore().
			Key(queue).Min("-inf").Max(now).Limit(0, 1).Build()).AsStrSlice()
		if err != nil {
			return nil, fmt.Errorf("failed to poll queue: %w", err)
		}

		if len(members) == 0 {
			return nil, ErrQueueEmpty
		}

		removed, err := c.client.Do(ctx, c.client.B().Zrem().
			Key(queue).Member(members[0]).Build()).AsInt64()
		if err != nil {
			return nil, fmt.Errorf("failed to claim job: %w", err)
		}

		// Another worker claimed it first; try the next one.
		if removed == 0 {
			continue
		}

		envelope := new(Envelope)
		if err := sonic.Unmarshal([]byte(members[0]), envelope); err != nil {
			return nil, fmt.Errorf("failed to decode job envelope: %w", err)
		}

		envelope.raw = members[0]

		return envelope, nil
	}
}

// Retry re-queues a failed job with exponential backoff. Once the attempt
// budget is spent the job moves to the queue's parked list instead and
// ErrJobParked is returned.
func (c *Client) Retry(ctx context.Context, queue string, envelope *Envelope) error {
	envelope.Attempts++

	if envelope.Attempts >= c.maxAttempts {
		member, err := sonic.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to marshal parked job: %w", err)
		}

		if err := c.client.Do(ctx, c.client.B().Rpush().
			Key(parkedKeyFor(queue)).Element(string(member)).Build()).Error(); err != nil {
			return fmt.Errorf("failed to park job: %w", err)
		}

		c.logger.Warn("Parked job after exhausting retries",
			zap.String("queue", queue),
			zap.String("job_id", envelope.ID),
			zap.Int("attempts", envelope.Attempts))

		return ErrJobParked
	}

	delay := c.retryDelay * (1 << (envelope.Attempts - 1))

	member, err := sonic.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal retried job: %w", err)
	}

	return c.add(ctx, queue, string(member), time.Now().Add(delay))
}

// Size returns the number of jobs in the named queue, ready or not.
func (c *Client) Size(ctx context.Context, queue string) (int64, error) {
	size, err := c.client.Do(ctx, c.client.B().Zcard().Key(queue).Build()).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue size: %w", err)
	}

	return size, nil
}

// Parked returns the jobs sitting in the queue's parked list.
func (c *Client) Parked(ctx context.Context, queue string) ([]*Envelope, error) {
	members, err := c.client.Do(ctx, c.client.B().Lrange().
		Key(parkedKeyFor(queue)).Start(0).Stop(-1).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to list parked jobs: %w", err)
	}

	envelopes := make([]*Envelope, 0, len(members))

	for _, member := range members {
		envelope := new(Envelope)
		if err := sonic.Unmarshal([]byte(member), envelope); err != nil {
			return nil, fmt.Errorf("failed to decode parked job: %w", err)
		}

		envelopes = append(envelopes, envelope)
	}

	return envelopes, nil
}

func (c *Client) add(ctx context.Context, queue, member string, readyAt time.Time) error {
	err := c.client.Do(ctx, c.client.B().Zadd().Key(queue).
		ScoreMember().ScoreMember(float64(readyAt.Unix()), member).Build()).Error()
	if err != nil {
		return fmt.Errorf("failed to add job to queue: %w", err)
	}

	return nil
}

func dedupKeyFor(queue, key string) string {
	return "dedup:" + queue + ":" + key
}

func parkedKeyFor(queue string) string {
	return "parked:" + queue
}
