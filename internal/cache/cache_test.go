package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(time.Minute)

	c.Set("session-1", 42)
	v, ok := c.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	c.Set("session-1", "live")

	_, ok := c.Get("session-1")
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = c.Get("session-1")
	assert.False(t, ok, "expired entries must not be served")
}

func TestCacheSetRefreshesTTL(t *testing.T) {
	c := NewCache(40 * time.Millisecond)
	c.Set("session-1", 1)

	time.Sleep(25 * time.Millisecond)
	c.Set("session-1", 2)

	time.Sleep(25 * time.Millisecond)
	v, ok := c.Get("session-1")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestCacheDelete(t *testing.T) {
	c := NewCache(time.Minute)
	c.Set("session-1", 1)
	c.Delete("session-1")

	_, ok := c.Get("session-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestCacheSize(t *testing.T) {
	c := NewCache(time.Minute)
	assert.Equal(t, 0, c.Size())

	c.Set("a", 1)
	c.Set("b", 2)
	assert.Equal(t, 2, c.Size())
}
