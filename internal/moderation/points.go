package moderation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/askora/askora/internal/database/types/enum"
	"github.com/askora/askora/internal/setup/config"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Points charged per human moderation action. Heavier actions cost more,
// so a moderator cannot mass-ban inside a single cooldown window.
var actionPoints = map[enum.ReportDecision]int64{
	enum.ReportDecisionBanUserPerm: 10,
	enum.ReportDecisionBanUserTemp: 5,
	enum.ReportDecisionWarnUser:    2,
	enum.ReportDecisionIgnore:      1,
}

// addPointsScript atomically increments a moderator's point counter while
// preserving the TTL of the window it was opened in. A plain INCR+EXPIRE
// pair would reset the window on every action.
var addPointsScript = rueidis.NewLuaScript(`
local current = redis.call("GET", KEYS[1])
if not current then
	redis.call("SET", KEYS[1], ARGV[1], "EX", ARGV[2])
	return tonumber(ARGV[1])
else
	local newVal = tonumber(current) + tonumber(ARGV[1])
	local ttl = redis.call("TTL", KEYS[1])
	if ttl < 0 then
		ttl = tonumber(ARGV[2])
	end
	redis.call("SET", KEYS[1], newVal, "EX", ttl)
	return newVal
end
`)

// PointsTracker enforces the per-moderator action budget through a shared
// counter store, so the ceiling holds across worker processes.
type PointsTracker struct {
	client   rueidis.Client
	logger   *zap.Logger
	limit    int64
	cooldown time.Duration
}

// NewPointsTracker creates a points tracker on the given counter
// database connection.
func NewPointsTracker(client rueidis.Client, cfg *config.Moderation, logger *zap.Logger) *PointsTracker {
	return &PointsTracker{
		client:   client,
		logger:   logger.Named("mod_points"),
		limit:    cfg.AdminPointsLimit,
		cooldown: time.Duration(cfg.AdminCooldown) * time.Second,
	}
}

// Charge debits the action's points from the moderator's budget. Exceeding
// the limit returns ErrCooldownActive; the increment still stands, so
// hammering the limit extends nothing but keeps the moderator blocked.
func (t *PointsTracker) Charge(ctx context.Context, moderatorID string, action enum.ReportDecision) (int64, error) {
	points, ok := actionPoints[action]
	if !ok {
		return 0, fmt.Errorf("%w: no point cost for action %s", ErrInvalidState, action)
	}

	key := fmt.Sprintf("admin:%s:mod_points", moderatorID)

	total, err := addPointsScript.Exec(ctx, t.client,
		[]string{key},
		[]string{
			strconv.FormatInt(points, 10),
			strconv.FormatInt(int64(t.cooldown.Seconds()), 10),
		},
	).AsInt64()
	if err != nil {
		return 0, fmt.Errorf("failed to add moderation points: %w", err)
	}

	if total > t.limit {
		t.logger.Debug("Moderator exceeded action budget",
			zap.String("moderator_id", moderatorID),
			zap.Int64("total", total),
			zap.Int64("limit", t.limit))

		return total, ErrCooldownActive
	}

	return total, nil
}
