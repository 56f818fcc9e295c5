package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheSetGet(t *testing.T) {
	c := New(10)
	defer c.Close()

	c.Set("request-1", "handle", time.Minute)

	value, exists := c.Get("request-1")
	assert.True(t, exists)
	assert.Equal(t, "handle", value)

	_, exists = c.Get("request-2")
	assert.False(t, exists)
}

func TestCacheExpiredItemIsNotReturned(t *testing.T) {
	c := New(10)
	defer c.Close()

	c.Set("request-1", "handle", -time.Second)

	_, exists := c.Get("request-1")
	assert.False(t, exists)
	assert.Equal(t, 0, c.Len())
}

func TestCacheDelete(t *testing.T) {
	c := New(10)
	defer c.Close()

	c.Set("request-1", "handle", time.Minute)
	c.Delete("request-1")
	c.Delete("missing")

	_, exists := c.Get("request-1")
	assert.False(t, exists)
}

func TestCacheKeepsLiveItemsPastBound(t *testing.T) {
	c := New(1)
	defer c.Close()

	c.Set("request-a", "handle-a", time.Hour)
	c.Set("request-b", "handle-b", time.Hour)

	assert.Equal(t, 2, c.Len())
	value, exists := c.Get("request-a")
	assert.True(t, exists)
	assert.Equal(t, "handle-a", value)
	value, exists = c.Get("request-b")
	assert.True(t, exists)
	assert.Equal(t, "handle-b", value)
}

func TestCacheDropsExpiredItemsWhenFull(t *testing.T) {
	c := New(2)
	defer c.Close()

	c.Set("stale", 1, -time.Second)
	c.Set("live", 2, time.Hour)
	c.Set("new", 3, time.Hour)

	assert.Equal(t, 2, c.Len())
	_, exists := c.Get("stale")
	assert.False(t, exists)
	_, exists = c.Get("live")
	assert.True(t, exists)
	_, exists = c.Get("new")
	assert.True(t, exists)
}

func TestCacheGetExtendsExpiration(t *testing.T) {
	c := New(10)
	defer c.Close()

	c.Set("request-1", "handle", time.Hour)
	c.items["request-1"].Expiration = time.Now().Add(time.Millisecond)

	_, exists := c.Get("request-1")
	assert.True(t, exists)

	c.removeExpired(time.Now().Add(time.Minute))

	value, exists := c.Get("request-1")
	assert.True(t, exists)
	assert.Equal(t, "handle", value)
}

func TestCacheOverwriteDoesNotEvict(t *testing.T) {
	c := New(1)
	defer c.Close()

	c.Set("request-1", 1, time.Minute)
	c.Set("request-1", 2, time.Minute)

	value, exists := c.Get("request-1")
	assert.True(t, exists)
	assert.Equal(t, 2, value)
}

func TestCacheRemoveExpired(t *testing.T) {
	c := New(0)
	defer c.Close()

	c.Set("stale", 1, time.Millisecond)
	c.Set("fresh", 2, time.Hour)

	c.removeExpired(time.Now().Add(time.Second))

	assert.Equal(t, 1, c.Len())
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New(1000)
	defer c.Close()

	numOperations := 100
	var wg sync.WaitGroup
	wg.Add(numOperations)

	for i := 0; i < numOperations; i++ {
		go func(index int) {
			defer wg.Done()

			key := fmt.Sprintf("request-%d", index)
			c.Set(key, index, time.Minute)

			value, exists := c.Get(key)
			assert.True(t, exists)
			assert.Equal(t, index, value)

			c.Delete(key)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 0, c.Len())
}

func TestCacheCloseIsIdempotent(t *testing.T) {
	c := New(1)
	c.Close()
	c.Close()
}
