package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salatech/promotion-service/internal/config"
	"github.com/salatech/promotion-service/internal/promotion"
)

// unlockScript deletes the lock only if the caller still owns it, so a lock
// that expired and was re-acquired by someone else is never released by the
// original holder.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is the single-writer lock scoped to a source year, backed by
// SET NX PX. It satisfies promotion.Locker.
type RedisLocker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisLocker creates a new RedisLocker.
func NewRedisLocker(rdb *redis.Client, log zerolog.Logger) *RedisLocker {
	return &RedisLocker{
		rdb: rdb,
		log: log.With().Str("component", "promotion_lock").Logger(),
	}
}

// TryLock acquires the per-year lock or returns promotion.ErrLockHeld without
// blocking. The ttl guards against a crashed holder wedging the year forever.
func (l *RedisLocker) TryLock(ctx context.Context, sourceYearID uuid.UUID, ttl time.Duration) (promotion.Unlock, error) {
	key := config.Key.PromotionLockKey(sourceYearID)
	owner := uuid.New().String()

	ok, err := l.rdb.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, promotion.ErrLockHeld
	}

	return func() {
		// Release with a fresh context: the caller's may already be done.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := unlockScript.Run(releaseCtx, l.rdb, []string{key}, owner).Err(); err != nil && err != redis.Nil {
			l.log.Warn().Err(err).Str("key", key).Msg("Lock release failed; TTL will expire it")
		}
	}, nil
}
