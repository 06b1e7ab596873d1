package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/billing-api/internal/infrastructure/cache"
)

func TestTTLCache_GetSet(t *testing.T) {
	c := cache.NewTTLCache[string, int](4, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
}

func TestTTLCache_DesalojaPorTamano(t *testing.T) {
	c := cache.NewTTLCache[string, int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "la entrada más antigua debe salir")
}

func TestTTLCache_Expira(t *testing.T) {
	c := cache.NewTTLCache[string, int](4, 20*time.Millisecond)
	c.Set("a", 1)

	assert.Eventually(t, func() bool {
		_, ok := c.Get("a")
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestTTLCache_InvalidateSoloLaClave(t *testing.T) {
	c := cache.NewTTLCache[string, int](0, 0)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}
