package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"kumoney/internal/logger"
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisOptions tune the redis locker. Zero values pick the defaults.
type RedisOptions struct {
	Prefix     string
	TTL        time.Duration
	RetryDelay time.Duration
}

// Redis is a single-instance redis lock: SET NX PX with a random token and a
// token-checked release. The TTL bounds how long a crashed holder blocks others.
type Redis struct {
	client *redis.Client
	opts   RedisOptions
}

// NewRedis creates a redis-backed Locker.
func NewRedis(client *redis.Client, opts RedisOptions) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "lock:"
	}
	if opts.TTL == 0 {
		opts.TTL = 15 * time.Second
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 25 * time.Millisecond
	}
	return &Redis{client: client, opts: opts}
}

// Lock implements Locker.
func (r *Redis) Lock(ctx context.Context, key string) (Unlock, error) {
	name := r.opts.Prefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, name, token, r.opts.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		if ok {
			break
		}

		timer := time.NewTimer(r.opts.RetryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// The request context may already be cancelled by now.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.client, []string{name}, token).Err(); err != nil {
			logger.Named("lock").Warnw("failed to release redis lock", "key", name, "error", err)
		}
	}, nil
}
