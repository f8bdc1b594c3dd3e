package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Insert(t *testing.T) {
	c := NewCache(3)

	require.NoError(t, c.Insert("a", 1, 1))
	require.NoError(t, c.Insert("b", 2, 2))
	assert.Equal(t, 3, c.GetWeight())
	assert.Equal(t, 3, c.GetBudget())
	assert.Equal(t, 2, c.Len())

	assert.Equal(t, ErrKeyExists, c.Insert("a", 3, 1))

	value, ok := c.Retrieve("a")
	require.True(t, ok)
	assert.Equal(t, 1, value)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(3)

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, c.Insert(key, key, 1))
	}

	// a becomes the most recently used, leaving b to be evicted.
	_, ok := c.Retrieve("a")
	require.True(t, ok)

	require.NoError(t, c.Insert("d", "d", 1))
	assert.Equal(t, 3, c.GetWeight())

	_, ok = c.Retrieve("b")
	assert.False(t, ok)
	for _, key := range []string{"a", "c", "d"} {
		_, ok := c.Retrieve(key)
		assert.True(t, ok, key)
	}

	// A heavy entry evicts as many entries as needed.
	require.NoError(t, c.Insert("e", "e", 3))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.GetWeight())

	// An entry heavier than the budget evicts itself.
	require.NoError(t, c.Insert("f", "f", 4))
	assert.Zero(t, c.Len())
	assert.Zero(t, c.GetWeight())
}

func TestCache_Clear(t *testing.T) {
	c := NewCache(10)
	require.NoError(t, c.Insert("a", 1, 1))

	c.Clear()
	assert.Zero(t, c.Len())
	assert.Zero(t, c.GetWeight())

	_, ok := c.Retrieve("a")
	assert.False(t, ok)
	require.NoError(t, c.Insert("a", 1, 1))
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", i, j)
				_ = c.Insert(key, j, 1)
				c.Retrieve(key)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.Len())
	assert.Equal(t, 50, c.GetWeight())
}
