package render

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

const DefaultCacheSize = 256

// Cache memoizes Render by raw text. Returned Results are shared between
// callers and must not be mutated.
type Cache struct {
	entries *lru.Cache[string, Result]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, Result](size)
	if err != nil {
		return nil, errors.Wrap(err, "render cache")
	}
	return &Cache{entries: entries}, nil
}

// Render returns the cached Result for raw, computing it on a miss. A nil Cache
// renders without memoizing.
func (c *Cache) Render(raw string) Result {
	if c == nil || c.entries == nil {
		return Render(raw)
	}
	if res, ok := c.entries.Get(raw); ok {
		return res
	}
	res := Render(raw)
	c.entries.Add(raw, res)
	return res
}

func (c *Cache) Len() int {
	if c == nil || c.entries == nil {
		return 0
	}
	return c.entries.Len()
}
