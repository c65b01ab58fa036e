package embedder

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/54b3r/edurec-go/internal/domain"
)

// Cache holds the content vectors for the most recently seen catalogue. It
// keeps a single live entry keyed by a hash of the ordered content-id list;
// any change to the id list (addition, removal, reorder) is a miss that
// replaces the entry.
//
// Only ids are hashed. If an item's title, description or tags change while
// its id stays the same, the cached vector is stale until the id list
// changes or the process restarts.
//
// Cache is safe for concurrent use. Concurrent misses for the same key share
// one provider call.
type Cache struct {
	mu      sync.RWMutex
	key     uint64
	valid   bool
	vectors [][]float32

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns an empty Cache.
func NewCache() *Cache {
	return &Cache{}
}

// ContentVectors returns one vector per item, in item order, computing them
// with emb only when the ordered id list differs from the cached entry.
// cached reports whether the provider was skipped. An empty item list
// returns immediately without touching the provider or the cache.
//
// The returned vectors are shared with the cache and must not be modified.
func (c *Cache) ContentVectors(ctx context.Context, items []domain.ContentItem, emb Embedder) (vectors [][]float32, cached bool, err error) {
	if len(items) == 0 {
		return [][]float32{}, false, nil
	}
	key := KeyFor(items)

	if v, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return v, true, nil
	}

	computed := false
	res, err, _ := c.group.Do(strconv.FormatUint(key, 16), func() (any, error) {
		// A concurrent caller may have filled the entry between lookup and Do.
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		computed = true
		c.misses.Add(1)
		v, err := emb.Embed(ctx, ContentTexts(items))
		if err != nil {
			return nil, err
		}
		if len(v) != len(items) {
			return nil, fmt.Errorf("embedder: cache: provider returned %d vectors for %d items: %w",
				len(v), len(items), domain.ErrEmbeddingUnavailable)
		}
		c.store(key, v)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	if !computed {
		c.hits.Add(1)
	}
	return res.([][]float32), !computed, nil
}

// Hits returns the number of calls served without a provider computation.
func (c *Cache) Hits() int64 { return c.hits.Load() }

// Misses returns the number of provider computations performed.
func (c *Cache) Misses() int64 { return c.misses.Load() }

// Invalidate drops the cached entry.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.vectors = nil
	c.mu.Unlock()
}

func (c *Cache) lookup(key uint64) ([][]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.valid && c.key == key {
		return c.vectors, true
	}
	return nil, false
}

func (c *Cache) store(key uint64, v [][]float32) {
	c.mu.Lock()
	c.key = key
	c.vectors = v
	c.valid = true
	c.mu.Unlock()
}

// KeyFor hashes the ordered content-id list of items.
func KeyFor(items []domain.ContentItem) uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, it := range items {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(it.ID)))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
