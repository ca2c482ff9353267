// internal/tenant/cache_test.go
//
// Unit-tests for the two-keyspace TTL cache.
//
// Expiry is exercised by backdating entry timestamps directly—the tests
// live in the same package precisely so they can reach the maps without
// sleeping through real TTLs.

package tenant

import (
	"testing"
	"time"

	"github.com/yanizio/atrium/internal/business"
)

// newTestCache returns a cache whose sweep never fires on its own.
func newTestCache(ttl time.Duration) *Cache {
	return NewCache(ttl, time.Hour)
}

func rec(id uint64, slug string) *business.Record {
	r := &business.Record{ID: id}
	r.Slug.String, r.Slug.Valid = slug, true
	return r
}

func TestCacheStoreAndLookup(t *testing.T) {
	c := newTestCache(5 * time.Minute)
	defer c.Close()

	c.Store(KeyspaceSlug, "acme", rec(1, "acme"))

	got, negative, ok := c.Lookup(KeyspaceSlug, "acme")
	if !ok || negative {
		t.Fatalf("Lookup = (_, %v, %v), want live positive entry", negative, ok)
	}
	if got.ID != 1 {
		t.Fatalf("got record ID %d, want 1", got.ID)
	}
}

func TestCacheLazyExpiry(t *testing.T) {
	c := newTestCache(5 * time.Minute)
	defer c.Close()

	c.Store(KeyspaceSlug, "acme", rec(1, "acme"))

	// Backdate the entry past the TTL; it must read as absent even though
	// it is still physically present.
	c.mu.Lock()
	e := c.slugs["acme"]
	e.at = time.Now().Add(-6 * time.Minute)
	c.slugs["acme"] = e
	c.mu.Unlock()

	if _, _, ok := c.Lookup(KeyspaceSlug, "acme"); ok {
		t.Fatal("expired entry returned as valid")
	}
}

func TestCacheNegativeEntry(t *testing.T) {
	c := newTestCache(5 * time.Minute)
	defer c.Close()

	c.Store(KeyspaceDomain, "gone.example", nil)

	got, negative, ok := c.Lookup(KeyspaceDomain, "gone.example")
	if !ok || !negative || got != nil {
		t.Fatalf("Lookup = (%v, %v, %v), want live negative entry", got, negative, ok)
	}
}

func TestCacheKeyspacesIndependent(t *testing.T) {
	c := newTestCache(5 * time.Minute)
	defer c.Close()

	// Same literal key in both spaces must not collide.
	c.Store(KeyspaceSlug, "acme", rec(1, "acme"))
	c.Store(KeyspaceDomain, "acme", nil)

	if _, negative, ok := c.Lookup(KeyspaceSlug, "acme"); !ok || negative {
		t.Fatal("slug entry clobbered by domain tombstone")
	}
	if _, negative, ok := c.Lookup(KeyspaceDomain, "acme"); !ok || !negative {
		t.Fatal("domain tombstone clobbered by slug entry")
	}
}

func TestCacheSweepRemovesExpired(t *testing.T) {
	c := newTestCache(5 * time.Minute)
	defer c.Close()

	c.Store(KeyspaceSlug, "fresh", rec(1, "fresh"))
	c.Store(KeyspaceSlug, "stale", rec(2, "stale"))
	c.Store(KeyspaceDomain, "stale.example", nil)

	backdate := time.Now().Add(-10 * time.Minute)
	c.mu.Lock()
	for _, key := range []string{"stale"} {
		e := c.slugs[key]
		e.at = backdate
		c.slugs[key] = e
	}
	e := c.domains["stale.example"]
	e.at = backdate
	c.domains["stale.example"] = e
	c.mu.Unlock()

	c.sweep()

	c.mu.RLock()
	_, staleSlug := c.slugs["stale"]
	_, staleDomain := c.domains["stale.example"]
	_, fresh := c.slugs["fresh"]
	c.mu.RUnlock()

	if staleSlug || staleDomain {
		t.Fatal("sweep left expired entries behind")
	}
	if !fresh {
		t.Fatal("sweep removed a live entry")
	}
}
