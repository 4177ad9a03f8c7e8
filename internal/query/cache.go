// Package query is the synchronized read/write layer between page handlers
// and the remote API client.
//
// Reads go through a Cache keyed by segment paths; writes are Mutations that
// declare the key prefixes they invalidate and apply that invalidation only
// after the remote call succeeds.
package query

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	shardedcache "github.com/simp-lee/cache"
	"golang.org/x/sync/singleflight"
)

const (
	keySep            = "|"
	defaultMaxEntries = 512
	// maxTrackedPrefixes bounds the invalidation history; past it the
	// history collapses into one entry covering every key.
	maxTrackedPrefixes = 1024
)

var segmentEscaper = strings.NewReplacer(`\`, `\\`, keySep, `\`+keySep)

// Key addresses a cached read. Segments are compared exactly; a Key is a
// prefix of another when all of its segments match the leading segments of
// the other.
type Key []string

// K builds a Key from its segments.
func K(segments ...string) Key {
	return Key(segments)
}

// With returns a new Key extended by segments.
func (k Key) With(segments ...string) Key {
	out := make(Key, 0, len(k)+len(segments))
	out = append(out, k...)
	return append(out, segments...)
}

// String joins the segments. Separator characters inside a segment are
// escaped so that distinct keys never collide.
func (k Key) String() string {
	parts := make([]string, len(k))
	for i, s := range k {
		parts[i] = segmentEscaper.Replace(s)
	}
	return strings.Join(parts, keySep)
}

// entry is one cached value with the epoch it was fetched in.
type entry struct {
	value any
	epoch uint64
}

// Cache is a per-session store of read results.
//
// Entries stay valid until a mutation invalidates a prefix that covers them;
// there is no time-based expiry. The size bound only limits memory: past it
// the oldest entry is dropped.
//
// Every Invalidate bumps a global epoch and records it against the
// invalidated prefixes. A fetch remembers the epoch it started in, and its
// result is stored only if no covering prefix was invalidated since, so a
// slow pre-mutation response can never be cached as current.
type Cache struct {
	mu          sync.Mutex
	entries     shardedcache.CacheInterface
	epoch       uint64
	invalidated map[string]uint64
	group       singleflight.Group
	logger      *slog.Logger
}

// NewCache creates a Cache holding at most maxEntries results.
func NewCache(maxEntries int, logger *slog.Logger) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	// One shard keeps the bound global. No cleanup interval means no
	// background goroutine, so a dropped Cache needs no Close.
	entries := shardedcache.NewCache(shardedcache.Options{
		MaxSize:    maxEntries,
		ShardCount: 1,
	})
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		entries:     entries,
		invalidated: make(map[string]uint64),
		logger:      logger,
	}
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	e, ok := v.(entry)
	if !ok {
		return nil, false
	}
	return e.value, true
}

func (c *Cache) currentEpoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// store saves value under key unless a covering prefix was invalidated after
// startEpoch. It reports whether the value was stored.
func (c *Cache) store(key string, value any, startEpoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.invalidatedSince(key, startEpoch) {
		return false
	}
	c.entries.SetWithExpiration(key, entry{value: value, epoch: startEpoch}, shardedcache.NoExpiration)
	return true
}

// invalidatedSince must be called with c.mu held.
func (c *Cache) invalidatedSince(key string, startEpoch uint64) bool {
	if startEpoch == c.epoch {
		return false
	}
	for prefix, at := range c.invalidated {
		if at > startEpoch && hasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Invalidate drops every entry whose key starts with one of prefixes. All
// prefixes are applied under one lock, so readers never observe a partially
// applied invalidation.
func (c *Cache) Invalidate(prefixes ...Key) {
	if len(prefixes) == 0 {
		return
	}
	c.mu.Lock()
	c.epoch++
	if len(c.invalidated) >= maxTrackedPrefixes {
		c.invalidated = map[string]uint64{"": c.epoch}
	}
	removed := 0
	for _, p := range prefixes {
		ps := p.String()
		c.invalidated[ps] = c.epoch
		if ps == "" {
			removed += c.entries.Count()
			c.entries.Clear()
			continue
		}
		if c.entries.Delete(ps) {
			removed++
		}
		removed += c.entries.DeletePrefix(ps + keySep)
	}
	epoch := c.epoch
	c.mu.Unlock()

	invalidations.Inc()
	c.logger.Debug("query cache invalidated",
		slog.Any("prefixes", prefixStrings(prefixes)),
		slog.Int("removed", removed),
		slog.Uint64("epoch", epoch),
	)
}

// Clear drops every entry. Used when the owning session logs out.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.entries.Clear()
	c.invalidated = map[string]uint64{"": c.epoch}
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries.Count()
}

// Has reports whether key currently holds a valid entry.
func (c *Cache) Has(key Key) bool {
	_, ok := c.lookup(key.String())
	return ok
}

// fetch runs fn at most once per (key, epoch) across concurrent callers and
// stores its result. fn runs detached from any single caller's context so
// that one caller giving up does not fail the others; each caller can still
// stop waiting through its own ctx.
func (c *Cache) fetch(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	start := c.currentEpoch()
	flightKey := key + "#" + strconv.FormatUint(start, 10)

	ch := c.group.DoChan(flightKey, func() (any, error) {
		v, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, v, start)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// hasPrefix reports whether key starts with prefix on a segment boundary.
// The empty prefix covers every key.
func hasPrefix(key, prefix string) bool {
	if prefix == "" || key == prefix {
		return true
	}
	return strings.HasPrefix(key, prefix+keySep)
}

func prefixStrings(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
