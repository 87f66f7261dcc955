package myredis

import (
	"context"
	"testing"
	"time"

	"id5multiplexing/interfaces"
	"id5multiplexing/storage"
	"id5multiplexing/storage/testkit"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "redis://localhost:6379"

func setupTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	client, err := NewRedisUniversalClient(testRedisAddr, WithPoolSize(4))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis is not available at %s: %v", testRedisAddr, err)
	}
	return client
}

// newTestStorage returns a storage under a fresh prefix and drops its keys on cleanup.
func newTestStorage(t *testing.T, client redis.UniversalClient) interfaces.StorageApi {
	prefix := "id5test-" + uuid.NewString()
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+":*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
	})
	return NewStorage(client, prefix)
}

func TestNewStorage_Panics(t *testing.T) {
	t.Run("client_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "myredis.storage.go: redis client is required", func() {
			NewStorage(nil, "p")
		})
	})
	t.Run("prefix_empty", func(t *testing.T) {
		client, err := NewRedisUniversalClient(testRedisAddr)
		require.NoError(t, err)
		defer client.Close()
		assert.PanicsWithValue(t, "myredis.storage.go: prefix is required", func() {
			NewStorage(client, "")
		})
	})
}

func TestNewRedisUniversalClient_BadURL(t *testing.T) {
	_, err := NewRedisUniversalClient("not-a-url://")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cant parse redis url")
}

func TestRedisStorage_Conformance(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	testkit.RunStorageApiConformance(t, func(t *testing.T) interfaces.StorageApi {
		return newTestStorage(t, client)
	})
}

func TestRedisStorage_SharedPrefix(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	a := newTestStorage(t, client)
	b := NewStorage(client, a.(*redisStorage).prefix)

	require.NoError(t, a.SetItem("id5id_v2", "payload"))
	got, err := b.GetItem("id5id_v2")
	require.NoError(t, err)
	assert.Equal(t, "payload", got)

	require.NoError(t, b.RemoveItem("id5id_v2"))
	_, err = a.GetItem("id5id_v2")
	assert.True(t, storage.IsNotFound(err))
}

func TestRedisStorage_ClosedClient(t *testing.T) {
	client := setupTestRedis(t)
	s := newTestStorage(t, client)
	client.Close()

	_, err := s.GetItem("k")
	require.Error(t, err)
	assert.False(t, storage.IsNotFound(err))
	assert.Error(t, s.SetItem("k", "v"))
	assert.Error(t, s.RemoveItem("k"))
}
