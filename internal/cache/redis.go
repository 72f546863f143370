package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/savichev/kickora/config"
	"github.com/savichev/kickora/internal/domain"
)

type RedisCache struct {
	client     *redis.Client
	matchesTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, matchesTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		matchesTTL: matchesTTL,
	}
}

// GetMatches returns the cached active-match page, nil on a miss.
func (c *RedisCache) GetMatches(ctx context.Context, skip, limit int) ([]domain.Match, error) {
	data, err := c.client.Get(ctx, matchesKey(skip, limit)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var matches []domain.Match
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}

func (c *RedisCache) SetMatches(ctx context.Context, skip, limit int, matches []domain.Match) error {
	payload, err := json.Marshal(matches)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, matchesKey(skip, limit), payload, c.matchesTTL).Err()
}

// InvalidateMatches drops every cached page. Called after any mutation that
// changes remaining capacity or match attributes.
func (c *RedisCache) InvalidateMatches(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "cache:matches:*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func matchesKey(skip, limit int) string {
	return fmt.Sprintf("cache:matches:%d:%d", skip, limit)
}
