package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// fixedWindowScript increments the counter at KEYS[1] and starts its window on
// the first hit. It returns the count and the remaining window in ms.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return { count, ttl }
`)

// WindowStore counts hits per key in fixed windows shared by every process
// talking to the same Redis.
type WindowStore struct {
	client *redis.Client
}

// NewWindowStore creates a WindowStore wrapping the given Redis client.
func NewWindowStore(client *redis.Client) *WindowStore {
	return &WindowStore{client: client}
}

// Incr records one hit for key and returns the hit count in the current window
// together with the time left until the window resets.
func (s *WindowStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	vals, err := fixedWindowScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if len(vals) != 2 {
		return 0, 0, fmt.Errorf("rate limit incr: unexpected script result %v", vals)
	}
	return vals[0], time.Duration(vals[1]) * time.Millisecond, nil
}
