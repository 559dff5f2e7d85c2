package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Redis struct {
	client *redis.Client
}

func New(redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 3

	client := redis.NewClient(opt)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{client: client}, nil
}

// Get retrieves a JSON-encoded value. A miss or a decode failure both
// report false.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) bool {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(val, dest) == nil
}

// Set stores a JSON-encoded value. Failures only cost a future miss.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[CACHE] set %s: %v", key, err)
	}
}

// DelPattern deletes keys matching a pattern in batches.
func (r *Redis) DelPattern(ctx context.Context, pattern string) {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	const batchSize = 100

	pipe := r.client.Pipeline()
	count := 0

	for iter.Next(ctx) {
		pipe.Del(ctx, iter.Val())
		count++

		if count >= batchSize {
			pipe.Exec(ctx)
			count = 0
		}
	}

	if count > 0 {
		pipe.Exec(ctx)
	}
	if err := iter.Err(); err != nil {
		log.Printf("[CACHE] scan %s: %v", pattern, err)
	}
}

func (r *Redis) Close() {
	r.client.Close()
}
