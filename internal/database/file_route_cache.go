package database

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"

	"route-optimizer/internal/models"
)

// routeCacheFile is the on-disk layout: entries sorted by key so rewrites
// of an unchanged cache produce identical bytes
type routeCacheFile struct {
	Entries []models.RouteCacheEntry `json:"entries"`
}

// FileRouteCache keeps every route in memory and mirrors the whole set to a
// JSON file on each write
type FileRouteCache struct {
	path    string
	entries map[string]*models.RouteCacheEntry
	logger  *zap.Logger
	mu      sync.RWMutex
}

// NewFileRouteCache opens (or creates) the cache file at path
func NewFileRouteCache(path string, logger *zap.Logger) (*FileRouteCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &FileRouteCache{
		path:    path,
		entries: make(map[string]*models.RouteCacheEntry),
		logger:  logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := c.flush(); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	default:
		var onDisk routeCacheFile
		if err := json.Unmarshal(data, &onDisk); err != nil {
			return nil, fmt.Errorf("failed to parse cache file %s: %w", path, err)
		}
		for i := range onDisk.Entries {
			e := onDisk.Entries[i]
			c.entries[e.Key] = &e
		}
	}

	logger.Info("[CACHE] Using route cache file",
		zap.String("path", path),
		zap.Int("entries", len(c.entries)))
	return c, nil
}

// flush writes every entry through a temp file and rename so readers never
// see a torn file. Callers hold mu.
func (c *FileRouteCache) flush() error {
	onDisk := routeCacheFile{Entries: make([]models.RouteCacheEntry, 0, len(c.entries))}
	for _, e := range c.entries {
		onDisk.Entries = append(onDisk.Entries, *e)
	}
	slices.SortFunc(onDisk.Entries, func(a, b models.RouteCacheEntry) int {
		return cmp.Compare(a.Key, b.Key)
	})

	data, err := json.MarshalIndent(onDisk, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal route cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write route cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace route cache: %w", err)
	}
	return nil
}

// Close is a no-op; every write is already on disk
func (c *FileRouteCache) Close() error {
	return nil
}

// HealthCheck verifies the cache file still exists
func (c *FileRouteCache) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(c.path); err != nil {
		return fmt.Errorf("route cache file unavailable: %w", err)
	}
	return nil
}

func (c *FileRouteCache) RouteCache() RouteCacheRepository {
	return c
}

func (c *FileRouteCache) Get(ctx context.Context, key string) (*models.RouteCacheEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[key].Clone(), nil
}

func (c *FileRouteCache) Set(ctx context.Context, entry *models.RouteCacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, existed := c.entries[entry.Key]
	c.entries[entry.Key] = entry.Clone()
	if err := c.flush(); err != nil {
		if existed {
			c.entries[entry.Key] = prev
		} else {
			delete(c.entries, entry.Key)
		}
		return err
	}
	return nil
}

func (c *FileRouteCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.entries[key]
	if !ok {
		return ErrNotFound
	}
	delete(c.entries, key)
	if err := c.flush(); err != nil {
		c.entries[key] = prev
		return err
	}
	return nil
}

func (c *FileRouteCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.entries
	c.entries = make(map[string]*models.RouteCacheEntry)
	if err := c.flush(); err != nil {
		c.entries = prev
		return err
	}
	return nil
}

func (c *FileRouteCache) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), nil
}
