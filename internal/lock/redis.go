package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultLockTTL = 10 * time.Second
	retryInterval  = 25 * time.Millisecond
	releaseTimeout = 2 * time.Second
)

// só remove se o token ainda for nosso
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis is a SETNX lock shared by every process using the same server.
// The TTL bounds how long a crashed holder can block a date.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Redis {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Redis{
		client: client,
		ttl:    ttl,
		prefix: "lock:",
		log:    log.With().Str("component", "lock").Logger(),
	}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := r.prefix + key
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %q: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %q: %w", key, ctx.Err())
		case <-time.After(retryInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()

			if err := releaseScript.Run(rctx, r.client, []string{redisKey}, token).Err(); err != nil {
				r.log.Error().Err(err).Str("key", key).Msg("release lock failed")
			}
		})
	}, nil
}
