package attribution

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes classification results by transaction hash for the duration
// of one run. An account-chain transaction may appear once per relevant
// transfer row, and classifying it requires a remote payload fetch, so the
// cache both deduplicates that work and guarantees the aggregation only ever
// sees one Classification per hash.
//
// Under concurrent access a given key is computed exactly once; other callers
// wait for and reuse the in-flight result.
type Cache struct {
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]Classification
}

// NewCache creates an empty classification cache scoped to a single run.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]Classification),
	}
}

// GetOrCompute returns the cached Classification for key, computing and
// storing it with compute on first sight. Failed computations are not cached,
// so a transient payload-fetch error does not poison the hash for the rest of
// the run.
func (c *Cache) GetOrCompute(key string, compute func() (Classification, error)) (Classification, error) {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have stored the
		// entry between the read above and the flight being scheduled.
		c.mu.RLock()
		cached, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return cached, nil
		}

		classification, err := compute()
		if err != nil {
			return Classification{}, err
		}

		c.mu.Lock()
		c.entries[key] = classification
		c.mu.Unlock()

		return classification, nil
	})
	if err != nil {
		return Classification{}, err
	}

	return result.(Classification), nil
}

// Len returns the number of distinct hashes classified so far.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
