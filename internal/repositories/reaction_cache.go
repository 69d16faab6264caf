package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	reactionCountTTL     = 24 * time.Hour
	unreadCountTTL       = 10 * time.Minute
	reactionCountKeyPref = "reactions:cnt" // per-target hash of reaction_type -> count
	unreadCountKeyPref   = "notifications:unread"
)

// ReactionCache keeps per-target reaction tallies and per-user unread
// notification counters in Redis. The cache is strictly best-effort: every
// caller falls back to PostgreSQL on a miss or error.
type ReactionCache struct {
	rdb *redis.Client
}

// NewReactionCache creates a new ReactionCache
func NewReactionCache(rdb *redis.Client) *ReactionCache {
	return &ReactionCache{rdb: rdb}
}

func (c *ReactionCache) countsKey(targetType string, targetID uint) string {
	return fmt.Sprintf("%s:%s:%d", reactionCountKeyPref, targetType, targetID)
}

func (c *ReactionCache) unreadKey(userID uint) string {
	return fmt.Sprintf("%s:%d", unreadCountKeyPref, userID)
}

// GetCounts retrieves cached reaction tallies for a target. ok is false on a
// miss or a Redis error.
func (c *ReactionCache) GetCounts(ctx context.Context, targetType string, targetID uint) (map[string]int64, bool) {
	fields, err := c.rdb.HGetAll(ctx, c.countsKey(targetType, targetID)).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}

	counts := make(map[string]int64, len(fields))
	for reactionType, raw := range fields {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		counts[reactionType] = n
	}
	return counts, true
}

// SetCounts writes fresh reaction tallies for a target
func (c *ReactionCache) SetCounts(ctx context.Context, targetType string, targetID uint, counts map[string]int64) error {
	key := c.countsKey(targetType, targetID)
	fields := make(map[string]interface{}, len(counts))
	for reactionType, n := range counts {
		fields[reactionType] = n
	}
	if err := c.rdb.HSet(ctx, key, fields).Err(); err != nil {
		return err
	}
	return c.rdb.Expire(ctx, key, reactionCountTTL).Err()
}

// InvalidateCounts drops the cached tallies after a reaction mutation
func (c *ReactionCache) InvalidateCounts(ctx context.Context, targetType string, targetID uint) error {
	return c.rdb.Del(ctx, c.countsKey(targetType, targetID)).Err()
}

// GetUnreadCount retrieves the cached unread-notification counter for a user
func (c *ReactionCache) GetUnreadCount(ctx context.Context, userID uint) (int64, bool) {
	raw, err := c.rdb.Get(ctx, c.unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetUnreadCount caches the unread-notification counter for a user
func (c *ReactionCache) SetUnreadCount(ctx context.Context, userID uint, count int64) error {
	return c.rdb.Set(ctx, c.unreadKey(userID), count, unreadCountTTL).Err()
}

// InvalidateUnreadCount drops a user's unread counter after a read or a fan-out
func (c *ReactionCache) InvalidateUnreadCount(ctx context.Context, userID uint) error {
	return c.rdb.Del(ctx, c.unreadKey(userID)).Err()
}
