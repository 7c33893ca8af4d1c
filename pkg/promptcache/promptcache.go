// Package promptcache caches advice-service responses keyed by the exact
// prompt that produced them, so repeated questions about the same schedule
// never leave the process twice. The CLI uses a disk-backed cache under the
// user cache directory; the server runs memory-only.
package promptcache

import (
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/maypok86/otter/v2"
)

// Entry is one cached response with its expiry.
type Entry struct {
	ExpiresAt time.Time
	Data      []byte
}

// Cache is an otter-backed response cache with optional gob persistence.
type Cache struct {
	cache      *otter.Cache[string, Entry]
	logger     *slog.Logger
	saveCancel context.CancelFunc
	dir        string // empty for memory-only
	saveWg     sync.WaitGroup
	ttl        time.Duration
	mu         sync.Mutex
}

// New creates a disk-backed cache in dir, loading any previously saved
// entries and saving back periodically until Close.
func New(ctx context.Context, dir string, ttl time.Duration, logger *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := newCache(dir, ttl, logger)
	if err := c.loadFromDisk(); err != nil {
		logger.Warn("failed to load prompt cache from disk", "error", err)
	}
	logger.Info("prompt cache initialized", "dir", dir, "entries_loaded", c.cache.EstimatedSize())

	c.startPeriodicSave(ctx)
	return c, nil
}

// NewMemoryOnly creates a cache that never touches disk.
func NewMemoryOnly(ttl time.Duration, logger *slog.Logger) *Cache {
	return newCache("", ttl, logger)
}

func newCache(dir string, ttl time.Duration, logger *slog.Logger) *Cache {
	cache := otter.Must(&otter.Options[string, Entry]{
		MaximumSize:      10_000,
		InitialCapacity:  1_000,
		ExpiryCalculator: otter.ExpiryWriting[string, Entry](ttl),
	})
	return &Cache{cache: cache, dir: dir, ttl: ttl, logger: logger}
}

func cacheKey(key string, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(key))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// APICall looks up a cached response for a key and request payload.
func (c *Cache) APICall(key string, payload []byte) ([]byte, bool) {
	entry, found := c.cache.GetIfPresent(cacheKey(key, payload))
	if !found {
		c.logger.Debug("prompt cache miss", "key", key, "reason", "not_found")
		return nil, false
	}

	// Otter expires by TTL already; the timestamp check guards entries
	// reloaded from an old disk file.
	if time.Now().After(entry.ExpiresAt) {
		c.logger.Debug("prompt cache miss", "key", key, "reason", "expired")
		c.cache.Invalidate(cacheKey(key, payload))
		return nil, false
	}

	return entry.Data, true
}

// SetAPICall stores a response for a key and request payload.
func (c *Cache) SetAPICall(key string, payload []byte, data []byte) error {
	entry := Entry{Data: data, ExpiresAt: time.Now().Add(c.ttl)}
	c.cache.Set(cacheKey(key, payload), entry)
	c.logger.Debug("prompt cache set", "key", key, "size", len(data))
	return nil
}

func (c *Cache) path() string {
	return filepath.Join(c.dir, "prompt-cache.gob")
}

func (c *Cache) loadFromDisk() error {
	file, err := os.Open(c.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening cache file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			c.logger.Debug("failed to close cache file", "error", closeErr)
		}
	}()

	var entries map[string]Entry
	if err := gob.NewDecoder(file).Decode(&entries); err != nil {
		return fmt.Errorf("decoding cache file: %w", err)
	}

	now := time.Now()
	valid := 0
	for key, entry := range entries {
		if now.Before(entry.ExpiresAt) {
			c.cache.Set(key, entry)
			valid++
		}
	}
	c.logger.Info("loaded prompt cache from disk", "total", len(entries), "valid", valid)
	return nil
}

func (c *Cache) saveToDisk() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	tempPath := c.path() + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	defer func() {
		if removeErr := os.Remove(tempPath); removeErr != nil && !os.IsNotExist(removeErr) {
			c.logger.Debug("failed to remove temp file", "error", removeErr)
		}
	}()

	entries := make(map[string]Entry)
	now := time.Now()
	c.cache.All()(func(key string, entry Entry) bool {
		if now.Before(entry.ExpiresAt) {
			entries[key] = entry
		}
		return true
	})

	if err := gob.NewEncoder(file).Encode(entries); err != nil {
		return fmt.Errorf("encoding cache to file: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("syncing cache file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tempPath, c.path()); err != nil {
		return fmt.Errorf("replacing cache file: %w", err)
	}

	c.logger.Debug("prompt cache saved", "entries", len(entries))
	return nil
}

func (c *Cache) startPeriodicSave(ctx context.Context) {
	saveCtx, cancel := context.WithCancel(ctx)
	c.saveCancel = cancel

	c.saveWg.Add(1)
	go func() {
		defer c.saveWg.Done()

		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-saveCtx.Done():
				return
			case <-ticker.C:
				if err := c.saveToDisk(); err != nil {
					c.logger.Error("periodic prompt cache save failed", "error", err)
				}
			}
		}
	}()
}

// Close stops background saving and flushes a final snapshot to disk.
func (c *Cache) Close() error {
	if c.saveCancel != nil {
		c.saveCancel()
	}
	c.saveWg.Wait()

	if err := c.saveToDisk(); err != nil {
		c.logger.Error("final prompt cache save failed", "error", err)
		return err
	}
	return nil
}
