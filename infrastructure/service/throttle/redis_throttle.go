package throttle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisThrottle is the shared-state login throttle. Counters live in Redis so
// every instance sees the same attempt history.
type RedisThrottle struct {
	client        *redis.Client
	logger        *logrus.Logger
	blockAfter    int
	blockDuration time.Duration
}

type RedisConfig struct {
	URL           string
	BlockAfter    int
	BlockDuration time.Duration
}

func NewRedisThrottle(cfg RedisConfig, logger *logrus.Logger) (*RedisThrottle, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	blockAfter := cfg.BlockAfter
	if blockAfter <= 0 {
		blockAfter = 5
	}
	blockDuration := cfg.BlockDuration
	if blockDuration <= 0 {
		blockDuration = 15 * time.Minute
	}

	logger.WithFields(logrus.Fields{
		"block_after":    blockAfter,
		"block_duration": blockDuration,
	}).Info("Redis login throttle initialized")

	return &RedisThrottle{
		client:        client,
		logger:        logger,
		blockAfter:    blockAfter,
		blockDuration: blockDuration,
	}, nil
}

func (t *RedisThrottle) Allow(ctx context.Context, scope, ip string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("throttle:%s:%s", scope, ip)

	pipeline := t.client.Pipeline()
	incr := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, window)
	if _, err := pipeline.Exec(ctx); err != nil {
		return true, fmt.Errorf("failed to increment throttle counter: %w", err)
	}
	count := incr.Val()
	if count > int64(limit) {
		t.logger.WithFields(logrus.Fields{
			"scope": scope,
			"ip":    ip,
			"count": count,
			"limit": limit,
		}).Warn("Attempt limit exceeded")
		return false, nil
	}
	return true, nil
}

// RecordFailure bumps the failure counter and blocks the address once the
// threshold is crossed.
func (t *RedisThrottle) RecordFailure(ctx context.Context, ip string) error {
	key := "login_failures:" + ip

	pipeline := t.client.Pipeline()
	incr := pipeline.Incr(ctx, key)
	pipeline.Expire(ctx, key, t.blockDuration)
	if _, err := pipeline.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record login failure: %w", err)
	}
	if incr.Val() >= int64(t.blockAfter) {
		blockKey := "blocked:" + ip
		if err := t.client.Set(ctx, blockKey, time.Now().Unix(), t.blockDuration).Err(); err != nil {
			return fmt.Errorf("failed to block address: %w", err)
		}
		t.logger.WithField("ip", ip).Warn("Address blocked after repeated login failures")
	}
	return nil
}

func (t *RedisThrottle) IsBlocked(ctx context.Context, ip string) (bool, error) {
	exists, err := t.client.Exists(ctx, "blocked:"+ip).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check block status: %w", err)
	}
	return exists > 0, nil
}
