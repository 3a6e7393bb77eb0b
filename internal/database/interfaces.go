package database

import (
	"context"

	"route-optimizer/internal/models"
)

// DataStore is the interface for route cache persistence
type DataStore interface {
	Close() error
	HealthCheck(ctx context.Context) error
	RouteCache() RouteCacheRepository
}

// RouteCacheRepository stores optimized routes keyed by RouteKey.
// Get returns (nil, nil) on a miss.
type RouteCacheRepository interface {
	Get(ctx context.Context, key string) (*models.RouteCacheEntry, error)
	Set(ctx context.Context, entry *models.RouteCacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
