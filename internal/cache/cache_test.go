package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return mr
}

func TestAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss fetches and populates", func(t *testing.T) {
		mr := setupMiniredis(t)

		var got []string
		calls := 0
		err := Aside(ctx, "k", &got, time.Minute, func() error {
			calls++
			got = []string{"a", "b"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, got)
		assert.Equal(t, 1, calls)
		assert.True(t, mr.Exists("k"))

		// second read is served from the cache
		var again []string
		err = Aside(ctx, "k", &again, time.Minute, func() error {
			calls++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, again)
		assert.Equal(t, 1, calls)
	})

	t.Run("ttl expiry refetches", func(t *testing.T) {
		mr := setupMiniredis(t)

		var got []string
		fetch := func() error {
			got = []string{"fresh"}
			return nil
		}
		require.NoError(t, Aside(ctx, "k", &got, time.Minute, fetch))

		mr.FastForward(2 * time.Minute)

		calls := 0
		var again []string
		require.NoError(t, Aside(ctx, "k", &again, time.Minute, func() error {
			calls++
			again = []string{"fresh"}
			return nil
		}))
		assert.Equal(t, 1, calls)
	})

	t.Run("nil client falls through to fetch", func(t *testing.T) {
		SetClient(nil)

		var got []string
		err := Aside(ctx, "k", &got, time.Minute, func() error {
			got = []string{"direct"}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"direct"}, got)
	})
}

func TestInvalidatePostsList(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostsListKey(), []string{"x"}, time.Minute))
	require.True(t, mr.Exists(PostsListKey()))

	InvalidatePostsList(ctx)
	assert.False(t, mr.Exists(PostsListKey()))
}

func TestGithubKey(t *testing.T) {
	assert.Equal(t, "github:octocat", GithubKey("octocat"))
}
