package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/act-placemat/normalizer/internal/metrics"
	"github.com/act-placemat/normalizer/pkg/logger"
)

const cacheType = "quality"

type Client struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(host string, port int, password string, db int, ttl time.Duration) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", fmt.Sprintf("%s:%d", host, port)), zap.Duration("ttl", ttl))

	return &Client{client: client, ttl: ttl}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func reportKey(hash string) string {
	return "quality:" + hash
}

// SetReport stores a quality report under the content hash of the scored input.
func (c *Client) SetReport(ctx context.Context, hash string, report any) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	err = c.client.Set(ctx, reportKey(hash), data, c.ttl).Err()
	if err != nil {
		return fmt.Errorf("failed to set report cache: %w", err)
	}

	logger.Debug("Quality report cached", zap.String("hash", hash), zap.Duration("ttl", c.ttl))
	return nil
}

// GetReport decodes a cached report into report. It reports false on a miss.
func (c *Client) GetReport(ctx context.Context, hash string, report any) (bool, error) {
	data, err := c.client.Get(ctx, reportKey(hash)).Bytes()
	if err == redis.Nil {
		metrics.CacheMisses.WithLabelValues(cacheType).Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report cache: %w", err)
	}

	err = json.Unmarshal(data, report)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal report: %w", err)
	}

	metrics.CacheHits.WithLabelValues(cacheType).Inc()
	logger.Debug("Quality report cache hit", zap.String("hash", hash))
	return true, nil
}

func (c *Client) Name() string { return "redis" }

func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
