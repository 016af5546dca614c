package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock taken over by someone else is left alone.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Redis is a Locker shared by every instance talking to the same server.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	retry  time.Duration
	token  func() string
	logger *zap.Logger
}

type RedisOption func(*Redis)

// WithTTL bounds how long a crashed holder keeps the lock.
func WithTTL(ttl time.Duration) RedisOption { return func(r *Redis) { r.ttl = ttl } }

// WithRetryInterval sets the pause between acquisition attempts.
func WithRetryInterval(d time.Duration) RedisOption { return func(r *Redis) { r.retry = d } }

func WithPrefix(prefix string) RedisOption { return func(r *Redis) { r.prefix = prefix } }

// WithTokenSource replaces the random lock token generator.
func WithTokenSource(token func() string) RedisOption { return func(r *Redis) { r.token = token } }

func WithLogger(logger *zap.Logger) RedisOption { return func(r *Redis) { r.logger = logger } }

func NewRedis(client redis.Cmdable, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: "leave-registry:lock:",
		ttl:    10 * time.Second,
		retry:  50 * time.Millisecond,
		token:  func() string { return uuid.NewString() },
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Lock polls SET NX until it wins or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := r.prefix + key
	token := r.token()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be cancelled; release anyway.
			releaseCtx, cancel := context.WithTimeout(context.Background(), r.ttl)
			defer cancel()
			if err := r.client.Eval(releaseCtx, releaseScript, []string{redisKey}, token).Err(); err != nil {
				r.logger.Warn("failed to release lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

var _ Locker = (*Redis)(nil)
