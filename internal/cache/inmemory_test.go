package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	Total string `json:"total"`
}

func TestInMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(true)

	key := GenerateKey(PrefixDashboard, "tenant_1", "5")
	assert.Equal(t, "dashboard:tenant_1:5", key)

	c.Set(ctx, key, &snapshot{Total: "40"}, time.Minute)
	c.Set(ctx, GenerateKey(PrefixDashboard, "tenant_2"), &snapshot{Total: "1"}, 0)
	c.Set(ctx, GenerateKey(PrefixRevenue, "tenant_1"), &snapshot{Total: "2"}, 0)

	v, ok := c.Get(ctx, key)
	require.True(t, ok)
	snap, ok := UnmarshalCacheValue[snapshot](v)
	require.True(t, ok)
	assert.Equal(t, "40", snap.Total)

	c.DeleteByPrefix(ctx, PrefixDashboard+":")
	_, ok = c.Get(ctx, key)
	assert.False(t, ok)
	_, ok = c.Get(ctx, GenerateKey(PrefixRevenue, "tenant_1"))
	assert.True(t, ok)

	c.Flush(ctx)
	_, ok = c.Get(ctx, GenerateKey(PrefixRevenue, "tenant_1"))
	assert.False(t, ok)
}

func TestInMemoryCache_Disabled(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache(false)
	c.Set(ctx, "k", "v", time.Minute)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestUnmarshalCacheValue_JSONString(t *testing.T) {
	snap, ok := UnmarshalCacheValue[snapshot](`{"total":"12.5"}`)
	require.True(t, ok)
	assert.Equal(t, "12.5", snap.Total)

	_, ok = UnmarshalCacheValue[snapshot](42)
	assert.False(t, ok)
	_, ok = UnmarshalCacheValue[snapshot](nil)
	assert.False(t, ok)
}
