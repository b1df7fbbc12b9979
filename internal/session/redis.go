package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis with a TTL so abandoned wizards
// are evicted. Each entry is still a single active session per caller;
// nothing outlives the wizard.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(callerID int64) string {
	return fmt.Sprintf("giftcert:session:%d", callerID)
}

// Get returns the caller's session, or nil when none exists
func (r *RedisStore) Get(ctx context.Context, callerID int64) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(callerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &s, nil
}

// Put stores or replaces the caller's session
func (r *RedisStore) Put(ctx context.Context, callerID int64, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(callerID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session put: %w", err)
	}
	return nil
}

// Delete removes the caller's session
func (r *RedisStore) Delete(ctx context.Context, callerID int64) error {
	if err := r.client.Del(ctx, sessionKey(callerID)).Err(); err != nil {
		return fmt.Errorf("session delete: %w", err)
	}
	return nil
}
