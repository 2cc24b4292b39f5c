package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "portal:session:"

// RedisStore keeps sessions in Redis, relying on key expiry for cleanup
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore creates a store on top of a Redis client
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

// Get retrieves a session by id
func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Save stores the session with a TTL matching its expiry
func (r *RedisStore) Save(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if sess.ExpiresAt.IsZero() {
		ttl = 0
	} else if ttl <= 0 {
		return r.Delete(ctx, sess.ID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := r.client.Set(ctx, redisKeyPrefix+sess.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete removes the session
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
