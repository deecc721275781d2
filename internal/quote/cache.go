package quote

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// priceTTL is how long a cached price counts as fresh.
const priceTTL = 30 * time.Minute

// CacheEntry is one cached price.
type CacheEntry struct {
	Price     float64   `json:"price"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Cache is the persistent symbol -> (price, timestamp) store. It is loaded
// fully into memory at the start of a batch, mutated under a mutex by the
// price-fetch workers, and written back once as a whole-file replace.
type Cache struct {
	path string

	mu      sync.Mutex
	entries map[string]CacheEntry
	now     func() time.Time // swapped in tests
}

// OpenCache loads the cache file at path. A missing or corrupt file is an
// empty cache, never an error.
func OpenCache(path string) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]CacheEntry),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Price cache unreadable, starting empty", "path", path, "error", err)
		}
		return c
	}
	if err := json.Unmarshal(data, &c.entries); err != nil {
		slog.Warn("Price cache corrupt, starting empty", "path", path, "error", err)
		c.entries = make(map[string]CacheEntry)
	}
	return c
}

// Get returns the cached price for symbol if it is younger than the expiry
// window.
func (c *Cache) Get(symbol string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[symbol]
	if !ok {
		return 0, false
	}
	if c.now().Sub(e.FetchedAt) >= priceTTL {
		return 0, false
	}
	return e.Price, true
}

// Put records a freshly fetched price. Last write per symbol wins.
func (c *Cache) Put(symbol string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[symbol] = CacheEntry{Price: price, FetchedAt: c.now()}
}

// Save persists the cache as a whole-file replace.
func (c *Cache) Save() error {
	c.mu.Lock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0o644)
}
