package vectorstore

import (
	"context"
	"sync"
)

// Cache is a bounded FIFO embedding cache keyed by input text. Eviction is
// strictly insertion-ordered, not recency-ordered: queries repeat rarely
// enough that LRU bookkeeping buys nothing here.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    []string
	vectors  map[string][]float32
	embedder Embedder
}

// NewCache wraps an embedder with a FIFO cache of the given capacity.
func NewCache(embedder Embedder, capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		vectors:  make(map[string][]float32, capacity),
		embedder: embedder,
	}
}

// Embed returns the cached vector for text, computing and storing it on a
// miss. The oldest inserted entry is evicted when the cache is full.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if vec, ok := c.vectors[text]; ok {
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.vectors[text]; !ok {
		if len(c.order) >= c.capacity {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.vectors, oldest)
		}
		c.order = append(c.order, text)
		c.vectors[text] = vec
	}
	return vec, nil
}

// Len reports the number of cached vectors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.vectors)
}
