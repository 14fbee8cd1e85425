package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	m := NewMemory(time.Minute)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestMemory_SetGet(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "product:1", entry{Name: "Bed A", Count: 2}, 0))

	var got entry
	found, err := m.Get(ctx, "product:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{Name: "Bed A", Count: 2}, got)

	found, err = m.Get(ctx, "product:2", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemory_Expiration(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "products:count", 3, time.Second))

	now = now.Add(2 * time.Second)
	var got int
	found, err := m.Get(ctx, "products:count", &got)
	require.NoError(t, err)
	assert.False(t, found)

	m.purge()
	assert.Zero(t, m.Size())
}

func TestMemory_DeleteByPrefix(t *testing.T) {
	m := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, ProductKey("a"), 1, 0))
	require.NoError(t, m.Set(ctx, ListKey(nil), 2, 0))
	require.NoError(t, m.Set(ctx, FeaturedKey(3), 3, 0))
	require.NoError(t, m.Set(ctx, CountKey(), 4, 0))

	require.NoError(t, m.DeleteByPrefix(ctx, ProductsPrefix))
	assert.Equal(t, 1, m.Size())

	require.NoError(t, m.Delete(ctx, ProductKey("a")))
	assert.Zero(t, m.Size())
}

func TestMemory_CloseIsIdempotent(t *testing.T) {
	m := NewMemory(time.Minute)
	assert.NoError(t, m.Close())
	assert.NoError(t, m.Close())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "product:abc", ProductKey("abc"))
	assert.Equal(t, "products:list:a,b", ListKey([]string{"b", "a"}))
	assert.Equal(t, "products:list:", ListKey(nil))
	assert.Equal(t, "products:featured:5", FeaturedKey(5))
	assert.Equal(t, "products:count", CountKey())
}
