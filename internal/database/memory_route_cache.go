package database

import (
	"context"
	"sync"

	"route-optimizer/internal/models"
)

// MemoryRouteCache keeps routes in process memory only
type MemoryRouteCache struct {
	mu      sync.RWMutex
	entries map[string]models.RouteCacheEntry
	closed  bool
}

func NewMemoryRouteCache() *MemoryRouteCache {
	return &MemoryRouteCache{
		entries: make(map[string]models.RouteCacheEntry),
	}
}

func (c *MemoryRouteCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *MemoryRouteCache) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *MemoryRouteCache) RouteCache() RouteCacheRepository {
	return c
}

func (c *MemoryRouteCache) Get(ctx context.Context, key string) (*models.RouteCacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return entry.Clone(), nil
}

func (c *MemoryRouteCache) Set(ctx context.Context, entry *models.RouteCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = *entry.Clone()
	return nil
}

func (c *MemoryRouteCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return ErrNotFound
	}
	delete(c.entries, key)
	return nil
}

func (c *MemoryRouteCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]models.RouteCacheEntry)
	return nil
}

func (c *MemoryRouteCache) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}
