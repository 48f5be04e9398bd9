package auth

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nitinmogalapalli/stackify/internal/domain"
)

// outcomeCache holds validated identity outcomes keyed by token hash for a
// short fixed window, bounding trust-store lookups under load. Entries are
// invalidated eagerly on sign-out/revocation and expire by the window even
// if revocation signaling is missed, so the staleness of security-sensitive
// state is bounded by the TTL.
type outcomeCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type cacheEntry struct {
	identity  domain.Identity
	expiresAt time.Time
}

func newOutcomeCache(ttl time.Duration, clock clockwork.Clock) *outcomeCache {
	return &outcomeCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// get returns a cached identity if present and not expired.
func (c *outcomeCache) get(tokenHash string) (domain.Identity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[tokenHash]
	if !ok {
		return domain.Anonymous, false
	}

	// Expired entries count as misses; eviction happens periodically.
	if c.clock.Now().After(entry.expiresAt) {
		return domain.Anonymous, false
	}

	return entry.identity, true
}

func (c *outcomeCache) set(tokenHash string, identity domain.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[tokenHash] = &cacheEntry{
		identity:  identity,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

func (c *outcomeCache) invalidate(tokenHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tokenHash)
}

func (c *outcomeCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictExpired removes expired entries and returns the count evicted.
func (c *outcomeCache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for hash, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, hash)
			evicted++
		}
	}
	return evicted
}

// startEvictionTimer starts a background goroutine that periodically evicts
// expired entries. Returns a stop function.
func (c *outcomeCache) startEvictionTimer(interval time.Duration) func() {
	ticker := c.clock.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.Chan():
				c.evictExpired()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
