package redis

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/blueprint-hub/hub-server/ratelimit"
)

// allowScript counts an attempt and opens the window in one step. A counter
// found without a ttl gets one, so a lost expiry cannot block a subject
// forever.
var allowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return count
`)

// Limiter shares counters across server instances through redis.
type Limiter struct {
	client *redis.Client
}

func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// NewLimiterFromURL connects to redisURL and checks the connection.
func NewLimiterFromURL(ctx context.Context, redisURL string) (*Limiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid redis url")
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}

	return NewLimiter(client), nil
}

func (l *Limiter) Allow(ctx context.Context, rule ratelimit.Rule, subject string) (bool, error) {
	key := rule.Key(subject)

	count, err := allowScript.Run(ctx, l.client, []string{key}, rule.Window.Milliseconds()).Int64()
	if err != nil {
		return false, errors.Wrap(err, "failed to count attempt")
	}

	return count <= int64(rule.Limit), nil
}

func (l *Limiter) Close() error {
	return l.client.Close()
}
