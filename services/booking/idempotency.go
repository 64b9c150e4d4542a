package booking

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"calmora/models"
)

const idemLockTTL = 10 * time.Second

// IdempotencyRecord is the stored outcome of a previously executed request.
// RequestHash binds the record to the original payload so a reused key with
// a different payload is rejected instead of replayed.
type IdempotencyRecord struct {
	RequestHash string         `json:"requestHash"`
	Session     models.Session `json:"session"`
}

// IdempotencyStore keeps idempotency records and their short-lived exclusive
// locks in Redis. A record lives for the configured retention window; a lock
// only for the duration of one request execution.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore constructs a store with the given retention window.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl}
}

func recordKey(key string) string { return "idem:record:" + key }
func lockKey(key string) string   { return "idem:lock:" + key }

// HashRequest fingerprints the request payload for replay comparison.
func HashRequest(req models.CreateSessionRequest) string {
	raw, _ := json.Marshal(req)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// TryLock acquires the per-key exclusive section. The returned value must be
// passed back to Unlock; acquisition fails (false, no error) when another
// request holds the key.
func (s *IdempotencyStore) TryLock(ctx context.Context, key string) (string, bool, error) {
	lockValue := uuid.NewString()
	acquired, err := s.client.SetNX(ctx, lockKey(key), lockValue, idemLockTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("idempotency lock failed: %w", err)
	}
	if !acquired {
		return "", false, nil
	}
	return lockValue, true, nil
}

// Unlock releases the per-key section. Only the owner of lockValue may
// release; an expired-and-reacquired lock is left alone.
func (s *IdempotencyStore) Unlock(ctx context.Context, key, lockValue string) error {
	stored, err := s.client.Get(ctx, lockKey(key)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("idempotency unlock failed: %w", err)
	}
	if stored != lockValue {
		return fmt.Errorf("idempotency lock not owned by this request")
	}
	return s.client.Del(ctx, lockKey(key)).Err()
}

// Get returns the recorded outcome for key, or nil when none exists within
// the retention window.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, recordKey(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency record fetch failed: %w", err)
	}
	var record IdempotencyRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("idempotency record corrupt: %w", err)
	}
	return &record, nil
}

// Put records the outcome for key with the retention TTL.
func (s *IdempotencyStore) Put(ctx context.Context, key string, record IdempotencyRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("idempotency record marshal failed: %w", err)
	}
	if err := s.client.Set(ctx, recordKey(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency record store failed: %w", err)
	}
	return nil
}
