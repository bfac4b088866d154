package cache

import (
	"context"
	"encoding/json"
	"time"

	"signal-desk/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// SignalBatchTTL covers one civil minute, the granularity of a batch key.
const SignalBatchTTL = 60 * time.Second

const signalKeyPrefix = "signals:"

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// SignalCache stores generated signal batches in Redis.
type SignalCache struct {
	tracer trace.Tracer
	redis  RedisClient
	ttl    time.Duration
}

func NewSignalCache(tracer trace.Tracer, client RedisClient) *SignalCache {
	return &SignalCache{tracer: tracer, redis: client, ttl: SignalBatchTTL}
}

func (c *SignalCache) GetSignals(ctx context.Context, key string) ([]domain.Signal, bool, error) {
	ctx, span := c.tracer.Start(ctx, "signal-cache.get")
	defer span.End()

	data, err := c.redis.Get(ctx, signalKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var signals []domain.Signal
	if err := json.Unmarshal(data, &signals); err != nil {
		return nil, false, err
	}
	return signals, true, nil
}

func (c *SignalCache) SetSignals(ctx context.Context, key string, signals []domain.Signal) error {
	ctx, span := c.tracer.Start(ctx, "signal-cache.set")
	defer span.End()

	if signals == nil {
		signals = []domain.Signal{}
	}
	data, err := json.Marshal(signals)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, signalKeyPrefix+key, data, c.ttl).Err()
}
