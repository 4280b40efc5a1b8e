package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR and PEXPIRE in one round trip so a window is never left without a TTL
var incrementScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisStore shares windows across every instance pointed at the same redis.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// creates a redis-backed store from a URL and verifies the connection
func NewRedisStoreFromURL(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (Record, error) {
	values, err := incrementScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Record{}, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	if len(values) != 2 {
		return Record{}, fmt.Errorf("unexpected increment reply for %s: %v", key, values)
	}

	return Record{
		Count:   int(values[0]),
		ResetAt: time.Now().Add(time.Duration(values[1]) * time.Millisecond),
	}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Record, bool, error) {
	pipe := s.client.Pipeline()
	countCmd := pipe.Get(ctx, key)
	ttlCmd := pipe.PTTL(ctx, key)

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return Record{}, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	count, err := countCmd.Int()
	if errors.Is(err, redis.Nil) {
		return Record{}, false, nil
	}

	if err != nil {
		return Record{}, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	ttl := ttlCmd.Val()
	if ttl < 0 {
		ttl = 0
	}

	return Record{Count: count, ResetAt: time.Now().Add(ttl)}, true, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// exposes the client so other redis-backed components can share the connection pool
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
