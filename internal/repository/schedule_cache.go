package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/courseops/scheduling-api/internal/models"
	appErrors "github.com/courseops/scheduling-api/pkg/errors"
)

// ScheduleCache is a read-through cache for instructor schedules. Entries are
// invalidated after every committed transition touching the instructor, so a
// stale read can only outlive a transition by the in-flight window.
type ScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewScheduleCache constructs the cache. A nil client disables caching.
func NewScheduleCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *ScheduleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleCache{client: client, ttl: ttl, logger: logger}
}

func scheduleKey(instructorID string) string {
	return fmt.Sprintf("schedule:instructor:%s", instructorID)
}

// Get returns the cached schedule or ErrCacheMiss.
func (c *ScheduleCache) Get(ctx context.Context, instructorID string) ([]models.ClassEntry, error) {
	if c.client == nil {
		return nil, appErrors.ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, scheduleKey(instructorID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, appErrors.ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get schedule %s: %w", instructorID, err)
	}
	var entries []models.ClassEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal cached schedule %s: %w", instructorID, err)
	}
	return entries, nil
}

// Set stores the schedule with the configured TTL.
func (c *ScheduleCache) Set(ctx context.Context, instructorID string, entries []models.ClassEntry) error {
	if c.client == nil {
		return nil
	}
	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal schedule %s: %w", instructorID, err)
	}
	if err := c.client.Set(ctx, scheduleKey(instructorID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set schedule %s: %w", instructorID, err)
	}
	return nil
}

// Invalidate drops cached schedules for the given instructors. Failures are
// logged, never surfaced: the cache is advisory.
func (c *ScheduleCache) Invalidate(ctx context.Context, instructorIDs ...string) {
	if c.client == nil {
		return
	}
	for _, id := range instructorIDs {
		if id == "" {
			continue
		}
		if err := c.client.Del(ctx, scheduleKey(id)).Err(); err != nil {
			c.logger.Warn("schedule cache invalidation failed", zap.String("instructor_id", id), zap.Error(err))
		}
	}
}
