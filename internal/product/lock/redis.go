package lock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix         = "product:verify:lock:"
	defaultRetryDelay = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Redis is a Locker shared across processes. A lock expires after ttl even if
// its holder never releases it.
type Redis struct {
	client     redis.UniversalClient
	ttl        time.Duration
	retryDelay time.Duration
	logger     *slog.Logger
}

type RedisOption func(*Redis)

func WithRetryDelay(d time.Duration) RedisOption {
	return func(r *Redis) {
		r.retryDelay = d
	}
}

func WithLogger(logger *slog.Logger) RedisOption {
	return func(r *Redis) {
		r.logger = logger
	}
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, opts ...RedisOption) *Redis {
	r := &Redis{client: client, ttl: ttl, retryDelay: defaultRetryDelay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := keyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(r.retryDelay)
	defer ticker.Stop()
	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, unavailable(key, ctx.Err())
			}
			return nil, unavailable(key, err)
		}
		if ok {
			return func() { r.release(redisKey, token) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, unavailable(key, ctx.Err())
		case <-ticker.C:
		}
	}
}

// release runs on its own context so a cancelled request still frees the lock.
func (r *Redis) release(redisKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Err(); err != nil && r.logger != nil {
		r.logger.WarnContext(ctx, "failed to release verify lock", "key", redisKey, "error", err)
	}
}
