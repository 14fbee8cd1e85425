package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*Redis, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	return NewRedis(client, 10*time.Minute), mock
}

func TestRedis_Get(t *testing.T) {
	ctx := context.Background()
	value := entry{Name: "Bed A", Count: 1}
	data, err := json.Marshal(value)
	require.NoError(t, err)

	t.Run("hit", func(t *testing.T) {
		c, mock := setupRedis(t)
		mock.ExpectGet("product:1").SetVal(string(data))

		var got entry
		found, err := c.Get(ctx, "product:1", &got)

		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, value, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss", func(t *testing.T) {
		c, mock := setupRedis(t)
		mock.ExpectGet("product:1").SetErr(redis.Nil)

		var got entry
		found, err := c.Get(ctx, "product:1", &got)

		require.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		c, mock := setupRedis(t)
		mock.ExpectGet("product:1").SetErr(errors.New("connection refused"))

		var got entry
		found, err := c.Get(ctx, "product:1", &got)

		require.Error(t, err)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedis_SetUsesDefaultTTL(t *testing.T) {
	ctx := context.Background()
	c, mock := setupRedis(t)
	data, err := json.Marshal(entry{Name: "Bed A"})
	require.NoError(t, err)

	mock.ExpectSet("product:1", data, 10*time.Minute).SetVal("OK")

	require.NoError(t, c.Set(ctx, "product:1", entry{Name: "Bed A"}, 0))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedis_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes scanned keys", func(t *testing.T) {
		c, mock := setupRedis(t)
		mock.ExpectScan(0, "products:*", scanBatch).SetVal([]string{"products:count", "products:list:"}, 0)
		mock.ExpectDel("products:count", "products:list:").SetVal(2)

		require.NoError(t, c.DeleteByPrefix(ctx, ProductsPrefix))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nothing to delete", func(t *testing.T) {
		c, mock := setupRedis(t)
		mock.ExpectScan(0, "products:*", scanBatch).SetVal([]string{}, 0)

		require.NoError(t, c.DeleteByPrefix(ctx, ProductsPrefix))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
