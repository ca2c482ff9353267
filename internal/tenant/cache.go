// internal/tenant/cache.go
//
// Two-keyspace tenant lookup cache.
//
// Context
// -------
// Resolution hits this cache before the business repository.  Keys live in
// two independent maps—slug→entry and domain→entry—because the same literal
// string could coincidentally exist in both spaces.  An entry is either a
// sanitized *business.Record or a negative tombstone (nil record) noting
// that the key was looked up and not found; tombstones stop repeated
// failing repository round-trips for hot unknown keys.
//
// Expiry is two-tier: Lookup treats any entry older than the TTL as absent
// (lazy expiry, no synchronous delete), and a background sweep removes
// stale entries every sweep interval for the lifetime of the process.  The
// cache holds no authoritative data; losing it costs one repository
// round-trip per key and nothing else.
//
// Notes
// -----
//   - One RWMutex guards both maps; it is never held across I/O.
//   - Oxford commas, two spaces after periods.
package tenant

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/business"
	"github.com/yanizio/atrium/internal/metrics"
)

// Keyspace selects which map a key lives in.
type Keyspace int

const (
	KeyspaceSlug Keyspace = iota
	KeyspaceDomain
)

func (k Keyspace) String() string {
	if k == KeyspaceDomain {
		return "domain"
	}
	return "slug"
}

// entry is one cached resolution result.  rec == nil marks a negative
// entry.  at is the insertion time used for both expiry tiers.
type entry struct {
	rec *business.Record
	at  time.Time
}

// Cache is constructed once at process start and shared by every request.
// Construct with NewCache; the zero value is unusable.
type Cache struct {
	mu      sync.RWMutex
	slugs   map[string]entry
	domains map[string]entry

	ttl    time.Duration
	ticker *time.Ticker
	done   chan struct{}
}

// NewCache returns a running cache and starts the background sweep.  Call
// Close on shutdown to stop the sweep goroutine.
func NewCache(ttl, sweepInterval time.Duration) *Cache {
	c := &Cache{
		slugs:   make(map[string]entry),
		domains: make(map[string]entry),
		ttl:     ttl,
		ticker:  time.NewTicker(sweepInterval),
		done:    make(chan struct{}),
	}
	go c.sweepLoop()
	return c
}

// Lookup returns the cached record for key.  ok reports whether a live
// entry exists; negative reports that the live entry is a tombstone.  An
// entry older than the TTL is reported as absent and left for the sweep.
func (c *Cache) Lookup(space Keyspace, key string) (rec *business.Record, negative, ok bool) {
	c.mu.RLock()
	e, hit := c.keyspace(space)[key]
	c.mu.RUnlock()

	if !hit || time.Since(e.at) > c.ttl {
		metrics.TenantCacheMissesTotal.Inc()
		return nil, false, false
	}
	if e.rec == nil {
		metrics.TenantCacheNegativeHitsTotal.Inc()
		return nil, true, true
	}
	metrics.TenantCacheHitsTotal.Inc()
	return e.rec, false, true
}

// Store records a resolution result, overwriting any previous entry.  A
// nil rec stores a negative tombstone.
func (c *Cache) Store(space Keyspace, key string, rec *business.Record) {
	c.mu.Lock()
	c.keyspace(space)[key] = entry{rec: rec, at: time.Now()}
	size := len(c.slugs) + len(c.domains)
	c.mu.Unlock()

	metrics.TenantCacheEntries.Set(float64(size))
}

// Close stops the sweep goroutine.  Safe to call once.
func (c *Cache) Close() {
	c.ticker.Stop()
	close(c.done)
}

// keyspace must be called with c.mu held.
func (c *Cache) keyspace(space Keyspace) map[string]entry {
	if space == KeyspaceDomain {
		return c.domains
	}
	return c.slugs
}

//
// Background sweep
//

func (c *Cache) sweepLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.ticker.C:
			c.sweep()
		}
	}
}

// sweep removes entries whose age exceeds the TTL from both keyspaces.
func (c *Cache) sweep() {
	now := time.Now()
	var evicted int

	c.mu.Lock()
	for _, m := range []map[string]entry{c.slugs, c.domains} {
		for k, e := range m {
			if now.Sub(e.at) > c.ttl {
				delete(m, k)
				evicted++
			}
		}
	}
	size := len(c.slugs) + len(c.domains)
	c.mu.Unlock()

	if evicted > 0 {
		metrics.TenantCacheEvictTotal.Add(float64(evicted))
		zap.L().Debug("tenant cache sweep",
			zap.Int("evicted", evicted),
			zap.Int("remaining", size))
	}
	metrics.TenantCacheEntries.Set(float64(size))
}
