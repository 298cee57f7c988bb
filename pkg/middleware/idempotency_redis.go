package middleware

import (
	"context"
	"encoding/json"
	"rentals/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisIdempotencyPrefix = "rentals:idempotency:"

// redisKV is the part of *redis.Client the store uses.
type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisIdempotencyStore shares cached responses between API replicas.
type RedisIdempotencyStore struct {
	client redisKV
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisIdempotencyStore(client redisKV, ttl time.Duration, log *logger.Logger) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, key string) (*CachedResponse, bool) {
	raw, err := s.client.Get(ctx, redisIdempotencyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.log.Warn("idempotency lookup failed", "error", err)
		return nil, false
	}

	var cached CachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		s.log.Warn("discarding corrupt idempotency entry", "error", err)
		return nil, false
	}
	return &cached, true
}

func (s *RedisIdempotencyStore) Set(ctx context.Context, key string, response *CachedResponse) {
	response.CreatedAt = time.Now()
	raw, err := json.Marshal(response)
	if err != nil {
		s.log.Warn("failed to encode idempotency entry", "error", err)
		return
	}

	// SetNX keeps the first response when two retries race past Get.
	if err := s.client.SetNX(ctx, redisIdempotencyPrefix+key, raw, s.ttl).Err(); err != nil {
		s.log.Warn("failed to store idempotency entry", "error", err)
	}
}

// Stop is a no-op; the Redis client is closed by client.GracefulShutdown.
func (s *RedisIdempotencyStore) Stop() {}
