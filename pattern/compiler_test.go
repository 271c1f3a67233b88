package pattern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilerCachesIdenticalSource(t *testing.T) {
	c := NewCompiler(0)

	p1, err := c.Compile("(human ?X)")
	require.NoError(t, err)
	p2, err := c.Compile("(human ?X)")
	require.NoError(t, err)

	assert.Same(t, p1, p2, "cached source must return the identical pattern")
	assert.Equal(t, 1, c.Len())
}

func TestCompilerLRUEviction(t *testing.T) {
	c := NewCompiler(2)

	a, _ := c.Compile("a")
	c.Compile("b")
	c.Compile("a") // refresh a
	c.Compile("c") // evicts b

	assert.Equal(t, 2, c.Len())

	a2, err := c.Compile("a")
	require.NoError(t, err)
	assert.Same(t, a, a2, "a was refreshed and must survive")

	b2, err := c.Compile("b")
	require.NoError(t, err)
	assert.Equal(t, "b", b2.Source)
}

func TestCompilerDoesNotCacheErrors(t *testing.T) {
	c := NewCompiler(0)

	_, err := c.Compile("(oops")
	require.ErrorIs(t, err, ErrSyntax)
	assert.Equal(t, 0, c.Len())

	_, err = c.Compile("(oops")
	require.ErrorIs(t, err, ErrSyntax)
}

func TestCompilerPurge(t *testing.T) {
	c := NewCompiler(0)
	p1, _ := c.Compile("(f ?X)")
	c.Purge()
	assert.Equal(t, 0, c.Len())

	p2, err := c.Compile("(f ?X)")
	require.NoError(t, err)
	assert.NotSame(t, p1, p2, "purge drops cached identity")
}

func TestCompilerConcurrent(t *testing.T) {
	c := NewCompiler(0)

	var wg sync.WaitGroup
	results := make([]*Pattern, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.Compile("(human ?X)")
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results[1:] {
		assert.Same(t, results[0], p)
	}
}

func TestCompilerDefaultSize(t *testing.T) {
	c := NewCompiler(-5)
	for i := 0; i < DefaultCacheSize+10; i++ {
		_, err := c.Compile(fmt.Sprintf("(f sym%d)", i))
		require.NoError(t, err)
	}
	assert.Equal(t, DefaultCacheSize, c.Len())
}
