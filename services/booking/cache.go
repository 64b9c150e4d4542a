package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"calmora/models"
	"calmora/utils"
)

// AvailabilityCache is a short-TTL read-through cache for computed weekly
// availability grids. Keys embed a per-therapist generation counter that
// reservations and cancellations bump, so stale grids die immediately
// instead of waiting out the TTL.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache constructs a cache with the given TTL.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

func genKey(therapistID string) string { return "avail:gen:" + therapistID }

// Key builds the cache key for one availability grid request.
func (c *AvailabilityCache) Key(ctx context.Context, therapistID, sessionTypeID, weekStart, patientTz string, stepMin int) string {
	gen, err := c.client.Get(ctx, genKey(therapistID)).Int64()
	if err != nil && err != redis.Nil {
		gen = -1 // unknown generation, key will miss
	}
	return fmt.Sprintf("avail:grid:%s:%d:%s:%s:%s:%d", therapistID, gen, sessionTypeID, weekStart, patientTz, stepMin)
}

// Bump invalidates all cached grids for the therapist.
func (c *AvailabilityCache) Bump(ctx context.Context, therapistID string) {
	if err := c.client.Incr(ctx, genKey(therapistID)).Err(); err != nil {
		utils.GetLogger().Warn("availability cache bump failed",
			zap.String("therapistId", therapistID), zap.Error(err))
	}
}

// Get returns the cached grid for key, or false on a miss.
func (c *AvailabilityCache) Get(ctx context.Context, key string) ([]models.DayAvailability, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var days []models.DayAvailability
	if err := json.Unmarshal([]byte(raw), &days); err != nil {
		return nil, false
	}
	return days, true
}

// Put stores the computed grid under key.
func (c *AvailabilityCache) Put(ctx context.Context, key string, days []models.DayAvailability) {
	raw, err := json.Marshal(days)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		utils.GetLogger().Warn("availability cache store failed", zap.Error(err))
	}
}
