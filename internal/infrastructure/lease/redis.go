// Package lease provides the distributed publish lease on Redis. Any number
// of instances may run cycles; only the lease holder performs the publish
// side effect.
package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"NewsSentry/internal/config"
	"NewsSentry/internal/ports"
)

const keyPrefix = "newssentry:lease:"

// releaseScript deletes the lease only when the caller still holds it, so a
// slow instance can never release a successor's lease.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease implements ports.Lease with SET NX PX semantics.
type RedisLease struct {
	client *redis.Client
}

var _ ports.Lease = (*RedisLease)(nil)

// NewRedisLease connects a lease store from configuration.
func NewRedisLease(cfg config.RedisConfig) *RedisLease {
	return &RedisLease{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Acquire takes the lease for resource. Returns ports.ErrLeaseBusy when
// another instance holds an unexpired lease.
func (l *RedisLease) Acquire(ctx context.Context, resource string, ttl time.Duration) (string, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, keyPrefix+resource, token, ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire lease %s: %w", resource, err)
	}
	if !ok {
		return "", ports.ErrLeaseBusy
	}
	return token, nil
}

// Release frees the lease when token still owns it; releasing an expired or
// stolen lease is a no-op.
func (l *RedisLease) Release(ctx context.Context, resource, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{keyPrefix + resource}, token).Err(); err != nil {
		return fmt.Errorf("release lease %s: %w", resource, err)
	}
	return nil
}

// Close tears down the underlying connection pool.
func (l *RedisLease) Close() error {
	return l.client.Close()
}
