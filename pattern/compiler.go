package pattern

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheSize is the pattern cache capacity used when none is given.
const DefaultCacheSize = 512

// Compiler compiles pattern source text through a bounded LRU cache.
//
// Cache policy: identical source text returns the identical *Pattern while
// the entry is cached; the least recently used entry is evicted once the
// capacity is exceeded. Concurrent compiles of the same source are collapsed
// into one parse. Compile errors are never cached.
//
// There is no package-level compiler: construct one and inject it so the
// caller controls cache lifetime and eviction.
type Compiler struct {
	cache *lru.Cache[string, *Pattern]
	group singleflight.Group
}

// NewCompiler creates a compiler whose cache holds at most size patterns.
// A size <= 0 selects DefaultCacheSize.
func NewCompiler(size int) *Compiler {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes, which are normalized above.
	cache, err := lru.New[string, *Pattern](size)
	if err != nil {
		panic(err)
	}
	return &Compiler{cache: cache}
}

// Compile returns the compiled pattern for source, parsing it at most once
// per cache residency. Invalid syntax fails with a *SyntaxError.
func (c *Compiler) Compile(source string) (*Pattern, error) {
	if p, ok := c.cache.Get(source); ok {
		return p, nil
	}
	v, err, _ := c.group.Do(source, func() (any, error) {
		if p, ok := c.cache.Get(source); ok {
			return p, nil
		}
		p, err := Parse(source)
		if err != nil {
			return nil, err
		}
		c.cache.Add(source, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Pattern), nil
}

// Len returns the number of cached patterns.
func (c *Compiler) Len() int {
	return c.cache.Len()
}

// Purge evicts every cached pattern.
func (c *Compiler) Purge() {
	c.cache.Purge()
}
