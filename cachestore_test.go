package trailblog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypergopher/trailblog"
)

func cacheFactories(t *testing.T) map[string]trailblog.CacheStore {
	t.Helper()

	bolt, err := trailblog.NewBoltCacheStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]trailblog.CacheStore{
		"memory": trailblog.NewMemoryCacheStore(),
		"bolt":   bolt,
	}
}

func TestCacheStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, cache := range cacheFactories(t) {
		t.Run(name, func(t *testing.T) {
			_, err := cache.Get(ctx, "absent")
			assert.ErrorIs(t, err, trailblog.ErrCacheMiss)

			require.NoError(t, cache.Set(ctx, "greeting", []byte("hello")))

			got, err := cache.Get(ctx, "greeting")
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), got)

			// Overwrite replaces in place.
			require.NoError(t, cache.Set(ctx, "greeting", []byte("hi")))
			got, err = cache.Get(ctx, "greeting")
			require.NoError(t, err)
			assert.Equal(t, []byte("hi"), got)

			require.NoError(t, cache.Delete(ctx, "greeting"))
			_, err = cache.Get(ctx, "greeting")
			assert.ErrorIs(t, err, trailblog.ErrCacheMiss)

			// Deleting a missing key is not an error.
			assert.NoError(t, cache.Delete(ctx, "greeting"))
		})
	}
}

func TestCacheStore_EmptyListingIsNotAMiss(t *testing.T) {
	ctx := context.Background()

	for name, cache := range cacheFactories(t) {
		t.Run(name, func(t *testing.T) {
			// An empty serialized listing is a real value, distinct from
			// an absent key.
			payload, err := trailblog.SerializePosts(nil)
			require.NoError(t, err)
			require.NoError(t, cache.Set(ctx, "state:WV", payload))

			got, err := cache.Get(ctx, "state:WV")
			require.NoError(t, err)

			posts, err := trailblog.DeserializePosts(got)
			require.NoError(t, err)
			assert.Empty(t, posts)
		})
	}
}

func TestCacheStore_Clear(t *testing.T) {
	ctx := context.Background()

	for name, cache := range cacheFactories(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, "a", []byte("1")))
			require.NoError(t, cache.Set(ctx, "b", []byte("2")))

			require.NoError(t, cache.Clear(ctx))

			_, err := cache.Get(ctx, "a")
			assert.ErrorIs(t, err, trailblog.ErrCacheMiss)
			_, err = cache.Get(ctx, "b")
			assert.ErrorIs(t, err, trailblog.ErrCacheMiss)
		})
	}
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "top", trailblog.CacheKeyTop())
	assert.Equal(t, "state:NY", trailblog.CacheKeyState("NY"))
	assert.Equal(t, "post:NY:42", trailblog.CacheKeyPost("NY", 42))

	// Keys for different partitions never collide.
	assert.NotEqual(t, trailblog.CacheKeyState("NY"), trailblog.CacheKeyState("VT"))
	assert.NotEqual(t, trailblog.CacheKeyPost("NY", 1), trailblog.CacheKeyPost("VT", 1))
}
