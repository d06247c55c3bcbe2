package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "key", []byte("value"), time.Minute)
	got, ok := c.Get(ctx, "key")
	require.True(t, ok)
	assert.Equal(t, []byte("value"), got)

	c.Delete(ctx, "key")
	_, ok = c.Get(ctx, "key")
	assert.False(t, ok)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	c.Set(ctx, "key", []byte("value"), time.Hour)
	_, ok := c.Get(ctx, "key")
	assert.True(t, ok)

	now = now.Add(2 * time.Hour)
	_, ok = c.Get(ctx, "key")
	assert.False(t, ok)
}

func TestMemoryCacheZeroTTLNeverExpires(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	c.SetClock(func() time.Time { return now })

	c.Set(ctx, "key", []byte("value"), 0)
	now = now.AddDate(1, 0, 0)
	_, ok := c.Get(ctx, "key")
	assert.True(t, ok)
}
