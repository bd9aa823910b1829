package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/velocityiq/backend-go/internal/config"
	"github.com/velocityiq/backend-go/internal/domain"
)

const (
	dashboardKeyPrefix = "dashboard"
	overviewKey        = dashboardKeyPrefix + ":overview:default"
	stockStatusKey     = dashboardKeyPrefix + ":stock_status:default"
	scanBatchSize      = 100
)

// DashboardCache holds the two expensive dashboard read models. Both queries
// are parameterless, so each gets a single key; a completed pipeline run
// invalidates the whole prefix at once.
type DashboardCache interface {
	GetOverview(ctx context.Context) (*domain.DashboardOverview, bool, error)
	SetOverview(ctx context.Context, overview *domain.DashboardOverview) error
	GetStockStatus(ctx context.Context) ([]domain.StockStatusItem, bool, error)
	SetStockStatus(ctx context.Context, items []domain.StockStatusItem) error
	InvalidateAll(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopDashboardCache struct{}

func NewDashboardCache(cfg config.CacheConfig) (DashboardCache, error) {
	if !cfg.Enabled {
		return &noopDashboardCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisDashboardCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopDashboardCache() DashboardCache {
	return &noopDashboardCache{}
}

func (c *redisDashboardCache) GetOverview(ctx context.Context) (*domain.DashboardOverview, bool, error) {
	payload, err := c.client.Get(ctx, overviewKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var overview domain.DashboardOverview
	if err := json.Unmarshal(payload, &overview); err != nil {
		return nil, false, fmt.Errorf("decode overview cache: %w", err)
	}

	return &overview, true, nil
}

func (c *redisDashboardCache) SetOverview(ctx context.Context, overview *domain.DashboardOverview) error {
	payload, err := json.Marshal(overview)
	if err != nil {
		return fmt.Errorf("encode overview cache: %w", err)
	}

	if err := c.client.Set(ctx, overviewKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisDashboardCache) GetStockStatus(ctx context.Context) ([]domain.StockStatusItem, bool, error) {
	payload, err := c.client.Get(ctx, stockStatusKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var items []domain.StockStatusItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, false, fmt.Errorf("decode stock status cache: %w", err)
	}

	return items, true, nil
}

func (c *redisDashboardCache) SetStockStatus(ctx context.Context, items []domain.StockStatusItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode stock status cache: %w", err)
	}

	if err := c.client.Set(ctx, stockStatusKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisDashboardCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, dashboardKeyPrefix, scanBatchSize)
}

func (n *noopDashboardCache) GetOverview(ctx context.Context) (*domain.DashboardOverview, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetOverview(ctx context.Context, overview *domain.DashboardOverview) error {
	return nil
}

func (n *noopDashboardCache) GetStockStatus(ctx context.Context) ([]domain.StockStatusItem, bool, error) {
	return nil, false, nil
}

func (n *noopDashboardCache) SetStockStatus(ctx context.Context, items []domain.StockStatusItem) error {
	return nil
}

func (n *noopDashboardCache) InvalidateAll(ctx context.Context) error {
	return nil
}
