package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedUser struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// withMiniredis points the package client at an in-process Redis and
// restores the previous client afterwards.
func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	prev := GetClient()
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(prev) })
	return mr
}

func TestGetSetJSON(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	var missing cachedUser
	found, err := GetJSON(ctx, UserKey(1), &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, SetJSON(ctx, UserKey(1), cachedUser{ID: 1, Name: "Priya"}, UserTTL))

	var got cachedUser
	found, err = GetJSON(ctx, UserKey(1), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Priya", got.Name)
}

func TestSetJSON_TTL(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, StatsKey(), cachedUser{ID: 9}, time.Minute))

	mr.FastForward(2 * time.Minute)

	var got cachedUser
	found, err := GetJSON(ctx, StatsKey(), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedUser) func() error {
		return func() error {
			fetches++
			*dest = cachedUser{ID: 7, Name: "from database"}
			return nil
		}
	}

	var first cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &first, UserTTL, fetch(&first)))
	assert.Equal(t, 1, fetches)

	// Second read is served from the cache.
	var second cachedUser
	require.NoError(t, Aside(ctx, UserKey(7), &second, UserTTL, fetch(&second)))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, "from database", second.Name)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	boom := errors.New("database down")
	var dest cachedUser
	err := Aside(ctx, UserKey(8), &dest, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	found, err := GetJSON(ctx, UserKey(8), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_BrokenCacheEntryTreatedAsMiss(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(UserKey(3), "{not json"))

	var dest cachedUser
	err := Aside(ctx, UserKey(3), &dest, UserTTL, func() error {
		dest = cachedUser{ID: 3, Name: "recovered"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", dest.Name)
}

func TestInvalidate(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, ItemKey("found", 4), cachedUser{ID: 4}, ItemTTL))
	InvalidateItem(ctx, "found", 4)

	var dest cachedUser
	found, err := GetJSON(ctx, ItemKey("found", 4), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNilClientIsNoop(t *testing.T) {
	prev := GetClient()
	SetClient(nil)
	t.Cleanup(func() { SetClient(prev) })

	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, UserKey(1), cachedUser{ID: 1}, UserTTL))

	var dest cachedUser
	found, err := GetJSON(ctx, UserKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)

	// Aside degrades to a plain fetch.
	err = Aside(ctx, UserKey(1), &dest, UserTTL, func() error {
		dest.Name = "direct"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "direct", dest.Name)
}
