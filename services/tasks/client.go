package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"calmora/config"
)

// Client enqueues delayed booking tasks onto the Redis-backed queue.
type Client struct {
	inner *asynq.Client
}

// NewClient constructs a queue client from the application config.
func NewClient() *Client {
	return &Client{
		inner: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     config.AppConfig.RedisAddr,
			Password: config.AppConfig.RedisPassword,
			DB:       config.AppConfig.RedisTaskQueueDB,
		}),
	}
}

// ScheduleExpiry enqueues the delayed release of a pending session.
func (c *Client) ScheduleExpiry(_ context.Context, sessionID string, at time.Time) error {
	task, opts, err := NewSessionExpireTask(sessionID, at)
	if err != nil {
		return fmt.Errorf("failed to build expiry task: %w", err)
	}
	if _, err := c.inner.Enqueue(task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue expiry task: %w", err)
	}
	return nil
}

// Close releases the underlying queue connection.
func (c *Client) Close() error {
	return c.inner.Close()
}
