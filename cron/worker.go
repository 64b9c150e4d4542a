package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"calmora/config"
	"calmora/services/booking"
	"calmora/services/tasks"
)

// InitExpiryWorker runs the async worker that releases unconfirmed pending
// sessions when their hold runs out.
func InitExpiryWorker(lifecycle booking.SessionLifecycle) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSessionExpire, handleSessionExpire(lifecycle))

	// Start async worker with retry logic
	go func() {
		log.Println("[ExpiryWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ExpiryWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ExpiryWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleSessionExpire(lifecycle booking.SessionLifecycle) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.SessionExpirePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[ExpiryHandler] Invalid payload: %v", err)
			return err
		}

		if err := lifecycle.ExpirePending(ctx, p.SessionID); err != nil {
			log.Printf("[ExpiryHandler] Failed to expire session %s: %v", p.SessionID, err)
			return err
		}
		return nil
	}
}
