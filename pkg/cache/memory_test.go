package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetAndGet(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("key", "value", time.Minute)

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "value", got)
}

func TestGetMissingKey(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestExpiredEntryIsGone(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("key", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("key", "value", 0)
	time.Sleep(10 * time.Millisecond)

	_, ok := c.Get("key")
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("key", "value", time.Minute)
	c.Delete("key")

	_, ok := c.Get("key")
	assert.False(t, ok)
}

func TestSetOverwritesValueAndTTL(t *testing.T) {
	c := NewMemoryCache()
	defer c.Close()

	c.Set("key", "old", 10*time.Millisecond)
	c.Set("key", "new", time.Minute)
	time.Sleep(30 * time.Millisecond)

	got, ok := c.Get("key")
	assert.True(t, ok)
	assert.Equal(t, "new", got)
}
