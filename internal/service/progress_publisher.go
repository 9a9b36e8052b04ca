package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/salatech/promotion-service/internal/config"
	"github.com/salatech/promotion-service/internal/promotion"
)

// RedisProgressPublisher fans executor progress events out over Redis PubSub
// so WebSocket listeners on any instance can stream them to the admin UI.
// Publishing is best-effort and never fails the batch.
type RedisProgressPublisher struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisProgressPublisher creates a new RedisProgressPublisher.
func NewRedisProgressPublisher(rdb *redis.Client, log zerolog.Logger) *RedisProgressPublisher {
	return &RedisProgressPublisher{
		rdb: rdb,
		log: log.With().Str("component", "progress_publisher").Logger(),
	}
}

// Publish implements promotion.ProgressPublisher.
func (p *RedisProgressPublisher) Publish(ctx context.Context, event promotion.ProgressEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error().Err(err).Msg("Marshal progress event failed")
		return
	}

	channel := config.Key.PromotionProgressChannel(event.SourceYearID)
	if err := p.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		p.log.Warn().Err(err).Str("channel", channel).Msg("Publish progress event failed")
	}
}
