package classifier

import (
	"strings"
	"time"

	"github.com/4rinababan/chatfinance/internal/cache"
	"github.com/4rinababan/chatfinance/internal/core"
)

// Predictor is anything that classifies a message.
type Predictor interface {
	Predict(text string) core.Classification
}

// Cached memoises predictions keyed by the normalised message.
type Cached struct {
	next  Predictor
	cache *cache.LRUCache[core.Classification]
}

func NewCached(next Predictor, size int, ttl time.Duration) *Cached {
	return &Cached{
		next:  next,
		cache: cache.NewLRUCache[core.Classification](size, ttl),
	}
}

func (c *Cached) Predict(text string) core.Classification {
	key := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	if hit, ok := c.cache.Get(key); ok {
		return hit
	}
	out := c.next.Predict(text)
	c.cache.Set(key, out)
	return out
}

// Cache exposes the underlying LRU for cleanup registration and stats.
func (c *Cached) Cache() *cache.LRUCache[core.Classification] {
	return c.cache
}
