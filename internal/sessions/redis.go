package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "agenda/pkg/errors"
	"agenda/pkg/model"

	"github.com/redis/go-redis/v9"
)

const (
	submissionPrefix = "wizard:submission:"
	pendingMarker    = "pending"
)

// redisCommands is the subset of the go-redis client the guard uses.
type redisCommands interface {
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisGuard shares submission keys between every process behind the API.
// A key holds "pending" while its submission runs and the booking JSON once
// it completed.
type RedisGuard struct {
	client redisCommands
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return newRedisGuard(client, ttl)
}

func newRedisGuard(client redisCommands, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultSubmissionTTL
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Claim(ctx context.Context, key string) (*model.Booking, error) {
	// A key can expire between SetNX and Get; one more attempt settles it.
	for range 2 {
		claimed, err := g.client.SetNX(ctx, submissionKey(key), pendingMarker, g.ttl).Result()
		if err != nil {
			return nil, apperrors.UnavailableWithCause("Submission guard", err)
		}
		if claimed {
			return nil, nil
		}

		value, err := g.client.Get(ctx, submissionKey(key)).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, apperrors.UnavailableWithCause("Submission guard", err)
		}
		if value == pendingMarker {
			return nil, errSubmissionInFlight()
		}

		var booking model.Booking
		if err := json.Unmarshal([]byte(value), &booking); err != nil {
			return nil, apperrors.Internal("Corrupted submission record", err)
		}
		return &booking, nil
	}
	return nil, errSubmissionInFlight()
}

func (g *RedisGuard) Complete(ctx context.Context, key string, booking model.Booking) error {
	payload, err := json.Marshal(booking)
	if err != nil {
		return fmt.Errorf("failed to encode submission record: %w", err)
	}
	return g.client.Set(ctx, submissionKey(key), payload, g.ttl).Err()
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, submissionKey(key)).Err()
}

func submissionKey(key string) string {
	return submissionPrefix + key
}
