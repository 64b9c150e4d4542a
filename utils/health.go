package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is the dependency snapshot served by /health. Each field names
// one backend so a failing probe points at the broken piece directly.
type HealthStatus struct {
	Mongo            bool      `json:"mongo"`
	CacheRedis       bool      `json:"cacheRedis"`
	IdempotencyRedis bool      `json:"idempotencyRedis"`
	CheckedAt        time.Time `json:"checkedAt"`
}

// Healthy reports whether every backend answered its last probe.
func (h HealthStatus) Healthy() bool {
	return h.Mongo && h.CacheRedis && h.IdempotencyRedis
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

func setHealthStatus(status HealthStatus) {
	healthMu.Lock()
	currentHealth = status
	healthMu.Unlock()
}

func probeHealth(ctx context.Context, cacheClient, idemClient *redis.Client, mongoClient *mongo.Client) HealthStatus {
	return HealthStatus{
		Mongo:            mongoClient.Ping(ctx, nil) == nil,
		CacheRedis:       cacheClient.Ping(ctx).Err() == nil,
		IdempotencyRedis: idemClient.Ping(ctx).Err() == nil,
		CheckedAt:        time.Now().UTC(),
	}
}

// StartHealthMonitor probes the booking engine's backends once immediately
// and then every minute, keeping the in-memory snapshot fresh.
func StartHealthMonitor(cacheClient, idemClient *redis.Client, mongoClient *mongo.Client) {
	go func() {
		ctx := context.Background()
		setHealthStatus(probeHealth(ctx, cacheClient, idemClient, mongoClient))

		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			setHealthStatus(probeHealth(ctx, cacheClient, idemClient, mongoClient))
		}
	}()
}
