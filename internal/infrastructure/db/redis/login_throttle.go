package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const throttleKeyPrefix = "login:fail:"

// recordFailure increments the counter and starts the window on the first
// failure only, so repeated failures do not extend the lockout.
var recordFailure = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// LoginThrottle counts failed logins per client in fixed Redis windows.
// Key format: login:fail:<client>
type LoginThrottle struct {
	client      *redis.Client
	maxAttempts int64
	window      time.Duration
}

// NewLoginThrottle creates a LoginThrottle allowing maxAttempts failures per
// window. A non-positive maxAttempts never blocks.
func NewLoginThrottle(client *redis.Client, maxAttempts int, window time.Duration) *LoginThrottle {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginThrottle{client: client, maxAttempts: int64(maxAttempts), window: window}
}

// Blocked returns how long client must wait before trying again, or zero.
func (t *LoginThrottle) Blocked(ctx context.Context, client string) (time.Duration, error) {
	if t.maxAttempts <= 0 {
		return 0, nil
	}

	n, err := t.client.Get(ctx, t.key(client)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("throttle check: %w", err)
	}
	if n < t.maxAttempts {
		return 0, nil
	}

	ttl, err := t.client.PTTL(ctx, t.key(client)).Result()
	if err != nil {
		return 0, fmt.Errorf("throttle ttl: %w", err)
	}
	if ttl <= 0 {
		// key without expiry (or expiring right now): fall back to a full window
		return t.window, nil
	}
	return ttl, nil
}

// RecordFailure counts one failed attempt for client.
func (t *LoginThrottle) RecordFailure(ctx context.Context, client string) error {
	if t.maxAttempts <= 0 {
		return nil
	}
	if err := recordFailure.Run(ctx, t.client, []string{t.key(client)}, t.window.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("throttle record: %w", err)
	}
	return nil
}

// Reset forgets the failures of client after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, client string) error {
	if err := t.client.Del(ctx, t.key(client)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

func (t *LoginThrottle) key(client string) string {
	return throttleKeyPrefix + client
}
