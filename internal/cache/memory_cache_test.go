package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c, err := NewMemoryCache(10, time.Minute)
	require.NoError(t, err)

	_, ok := c.Get("note-1")
	assert.False(t, ok)

	c.Set("note-1", "parsed-result")
	v, ok := c.Get("note-1")
	require.True(t, ok)
	assert.Equal(t, "parsed-result", v)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c, err := NewMemoryCache(10, 10*time.Millisecond)
	require.NoError(t, err)

	c.Set("note-1", "parsed-result")
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("note-1")
	assert.False(t, ok)
}

func TestMemoryCache_EvictionOnCapacity(t *testing.T) {
	c, err := NewMemoryCache(1, time.Minute)
	require.NoError(t, err)

	c.Set("note-1", "a")
	c.Set("note-2", "b")

	_, ok := c.Get("note-1")
	assert.False(t, ok, "oldest entry should have been evicted")

	v, ok := c.Get("note-2")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestMemoryCache_Invalidate(t *testing.T) {
	c, err := NewMemoryCache(10, time.Minute)
	require.NoError(t, err)

	c.Set("note-1", "parsed-result")
	c.Invalidate("note-1")

	_, ok := c.Get("note-1")
	assert.False(t, ok)
}

func TestMemoryCache_Defaults(t *testing.T) {
	c, err := NewMemoryCache(0, 0)
	require.NoError(t, err)
	assert.NotNil(t, c)
}
