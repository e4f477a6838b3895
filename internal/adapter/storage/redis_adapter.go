package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mfigueroa/fastfood-pos/internal/port"
)

const (
	rateKey            = "exchange_rate:usd_ves"
	sessionKeyPrefix   = "session:"
	changeChanPrefix   = "changes:"
	idempotencyKeyTTL  = 24 * time.Hour
)

// RedisAdapter backs the idempotency, rate-cache, session and
// change-publishing ports on one Redis client.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// SetIdempotency sets the key if absent, returning false when it already
// existed. Keys expire after a day so a stuck key cannot block forever.
func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

// DeleteIdempotency releases a claimed key.
func (r *RedisAdapter) DeleteIdempotency(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func (r *RedisAdapter) GetRate(ctx context.Context) (float64, bool, error) {
	val, err := r.client.Get(ctx, rateKey).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get rate: %w", err)
	}
	rate, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cached rate %q: %w", val, err)
	}
	return rate, true, nil
}

func (r *RedisAdapter) SetRate(ctx context.Context, rate float64, ttl time.Duration) error {
	if err := r.client.Set(ctx, rateKey, strconv.FormatFloat(rate, 'f', -1, 64), ttl).Err(); err != nil {
		return fmt.Errorf("set rate: %w", err)
	}
	return nil
}

func (r *RedisAdapter) SaveSession(ctx context.Context, token, userID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, sessionKeyPrefix+token, userID, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession returns "" for an unknown or expired token.
func (r *RedisAdapter) GetSession(ctx context.Context, token string) (string, error) {
	userID, err := r.client.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	return userID, nil
}

func (r *RedisAdapter) DeleteSession(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PublishChange pushes the event onto the table's pub/sub channel.
func (r *RedisAdapter) PublishChange(ctx context.Context, event port.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := r.client.Publish(ctx, changeChanPrefix+event.Table, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}
