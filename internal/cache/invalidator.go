// Package cache implements key-based invalidation of the read cache.
// Invalidation is fire-and-forget: entries carry short TTLs, so a missed
// eviction is an availability concern, never a correctness one.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// scanBatchSize bounds how many keys a single SCAN iteration returns.
const scanBatchSize = 100

// Invalidator evicts cache entries after mutations.
type Invalidator struct {
	client rueidis.Client
	logger *zap.Logger
}

// NewInvalidator creates an invalidator on the given cache database
// connection.
func NewInvalidator(client rueidis.Client, logger *zap.Logger) *Invalidator {
	return &Invalidator{
		client: client,
		logger: logger.Named("cache"),
	}
}

// InvalidateContent evicts the cached entry for a piece of content.
func (i *Invalidator) InvalidateContent(ctx context.Context, contentID string) {
	i.del(ctx, fmt.Sprintf("content:%s", contentID))
}

// InvalidateVersion evicts the cached entry for a specific version.
func (i *Invalidator) InvalidateVersion(ctx context.Context, questionID string, version int) {
	i.del(ctx, fmt.Sprintf("version:%s:%d", questionID, version))
}

// InvalidateVersionHistory evicts every cached history page for a question.
func (i *Invalidator) InvalidateVersionHistory(ctx context.Context, questionID string) {
	pattern := fmt.Sprintf("versionHistory:%s:*", questionID)

	var cursor uint64

	for {
		entry, err := i.client.Do(ctx, i.client.B().Scan().Cursor(cursor).
			Match(pattern).Count(scanBatchSize).Build()).AsScanEntry()
		if err != nil {
			i.logger.Warn("Failed to scan version history keys",
				zap.String("question_id", questionID),
				zap.Error(err))

			return
		}

		for _, key := range entry.Elements {
			i.del(ctx, key)
		}

		cursor = entry.Cursor
		if cursor == 0 {
			return
		}
	}
}

func (i *Invalidator) del(ctx context.Context, key string) {
	if err := i.client.Do(ctx, i.client.B().Del().Key(key).Build()).Error(); err != nil && !rueidis.IsRedisNil(err) {
		i.logger.Warn("Failed to evict cache key",
			zap.String("key", key),
			zap.Error(err))
	}
}
