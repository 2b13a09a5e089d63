// Package cache is an optional Redis-backed store for check results,
// so repeated checks of identical text skip the backend entirely.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/quillgo/quill/internal/model"
)

const DefaultTTL = 15 * time.Minute

// Redis stores msgpack-encoded results keyed by a digest of the
// backend mode, the text, and the protected-word list.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// New connects to redisURL (redis://host:port/db). ttl <= 0 means
// DefaultTTL.
func New(redisURL string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("cache: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cache: connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, prefix: "check:", ttl: ttl}, nil
}

// Close releases the underlying connection pool.
func (c *Redis) Close() error { return c.client.Close() }

// Key digests the inputs that determine a check's outcome.
func Key(mode, text string, words []string) string {
	h := sha256.New()
	h.Write([]byte(mode))
	h.Write([]byte{0})
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(words, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key, or (nil, false) on a miss.
// Decode failures count as misses: a corrupt entry must never poison
// a check.
func (c *Redis) Get(ctx context.Context, key string) (*model.Result, bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	var res model.Result
	if err := msgpack.Unmarshal(raw, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// Put stores res under key with the configured TTL.
func (c *Redis) Put(ctx context.Context, key string, res *model.Result) error {
	raw, err := msgpack.Marshal(res)
	if err != nil {
		return fmt.Errorf("cache: encode result: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}
	return nil
}
