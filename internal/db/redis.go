package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/patrickwarner/openmediaplan/internal/models"
)

const planKeyPrefix = "mediaplan:plan:"

// RedisStore wraps a redis client used as the generated plan cache.
type RedisStore struct {
	Client *redis.Client
}

// InitRedis initializes a Redis client and returns a RedisStore.
func InitRedis(ctx context.Context, addr string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
	}

	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

func planKey(id string) string {
	return planKeyPrefix + id
}

// SavePlan stores plan under its ID for ttl. A zero ttl keeps it forever.
func (r *RedisStore) SavePlan(ctx context.Context, plan *models.StoredPlan, ttl time.Duration) error {
	if plan == nil || plan.ID == "" {
		return errors.New("plan without id")
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := r.Client.Set(ctx, planKey(plan.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save plan %s: %w", plan.ID, err)
	}
	return nil
}

// GetPlan returns the cached plan or models.ErrNotFound once it has expired.
func (r *RedisStore) GetPlan(ctx context.Context, id string) (*models.StoredPlan, error) {
	data, err := r.Client.Get(ctx, planKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %s: %w", id, err)
	}
	var plan models.StoredPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", id, err)
	}
	return &plan, nil
}

// Ping reports whether Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
