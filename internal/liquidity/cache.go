package liquidity

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/batchauction/engine/pkg/cache"
)

// absentCacheKey identifies a token pair's "no pool here" cache entry,
// independent of query direction.
func absentCacheKey(a, b common.Address) string {
	if a.Hex() <= b.Hex() {
		return "absent:" + a.Hex() + ":" + b.Hex()
	}
	return "absent:" + b.Hex() + ":" + a.Hex()
}

// AbsentPoolCache remembers token pairs observed to have no pool, for a
// configured TTL, so repeated queries during that window skip the
// underlying pool discovery call entirely.
type AbsentPoolCache struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewAbsentPoolCache wraps an existing cache.Cache (typically a
// pkg/cache.RistrettoCache) with a fixed absence TTL.
func NewAbsentPoolCache(c cache.Cache, ttl time.Duration) *AbsentPoolCache {
	return &AbsentPoolCache{cache: c, ttl: ttl}
}

// MarkAbsent records that no pool exists between a and b for the
// configured TTL.
func (c *AbsentPoolCache) MarkAbsent(a, b common.Address) {
	c.cache.Set(absentCacheKey(a, b), true, c.ttl)
}

// IsAbsent reports whether a and b were recently observed to have no
// pool between them.
func (c *AbsentPoolCache) IsAbsent(a, b common.Address) bool {
	_, found := c.cache.Get(absentCacheKey(a, b))
	return found
}

// Discoverer resolves the pool between two tokens at a fixed block
// context. A (false, nil) result means "pool absent" and is cacheable;
// a non-nil error means a node-layer failure that must propagate and
// must never be cached as absence.
type Discoverer func(tokenIn, tokenOut common.Address) (Pool, bool, error)

// Lookup wraps discover with the absence cache: a cached-absent pair
// short-circuits without calling discover, and a fresh "no pool"
// result (not an error) is cached for the configured TTL. Node-layer
// errors are never cached and simply surface as "no pool" to this
// PoolLookup-shaped caller, since PoolLookup carries no error channel
// of its own. Callers needing to distinguish absence from failure
// should call discover directly instead.
func (c *AbsentPoolCache) Lookup(discover Discoverer) PoolLookup {
	return func(tokenIn, tokenOut common.Address) (Pool, bool) {
		if c.IsAbsent(tokenIn, tokenOut) {
			return Pool{}, false
		}
		pool, ok, err := discover(tokenIn, tokenOut)
		if err != nil {
			return Pool{}, false
		}
		if !ok {
			c.MarkAbsent(tokenIn, tokenOut)
			return Pool{}, false
		}
		return pool, true
	}
}
