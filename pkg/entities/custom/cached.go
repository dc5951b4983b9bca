package custom

import (
	"context"

	"github.com/snipsco/snips-nlu-go/pkg/entities"
	"github.com/snipsco/snips-nlu-go/pkg/entities/cache"
)

// Cached wraps a Parser in a bounded LRU keyed on lowercased input plus
// requested entity scope.
type Cached struct {
	inner Parser
	cache *cache.Cache[[]entities.CustomResult]
}

// NewCached wraps parser with an LRU of the given capacity (DefaultCapacity
// if <= 0).
func NewCached(parser Parser, capacity int) *Cached {
	return &Cached{inner: parser, cache: cache.New[[]entities.CustomResult](capacity)}
}

func (c *Cached) EntityNames() []string { return c.inner.EntityNames() }

func (c *Cached) Parse(ctx context.Context, text string, scope []string) ([]entities.CustomResult, error) {
	key := cache.Key(text, scope)
	if hit, ok := c.cache.Get(key); ok {
		return hit, nil
	}
	res, err := c.inner.Parse(ctx, text, scope)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, res)
	return res, nil
}
