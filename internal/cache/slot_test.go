package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Items []string `json:"items"`
}

func TestEntryFresh(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := Entry[payload]{FetchedAt: now, TTL: time.Hour}

	require.True(t, entry.Fresh(now.Add(59*time.Minute)))
	require.False(t, entry.Fresh(now.Add(time.Hour)))
	require.False(t, Entry[payload]{}.Fresh(now))
	require.False(t, Entry[payload]{FetchedAt: now}.Fresh(now))
}

func TestMemorySlot(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot[payload]()

	_, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	now := time.Now().UTC()
	require.NoError(t, slot.Store(ctx, Entry[payload]{Value: payload{Items: []string{"a"}}, FetchedAt: now, TTL: time.Minute}))
	require.NoError(t, slot.Store(ctx, Entry[payload]{Value: payload{Items: []string{"b"}}, FetchedAt: now, TTL: time.Minute}))

	entry, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"b"}, entry.Value.Items)

	require.NoError(t, slot.Clear(ctx))
	_, ok, err = slot.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisSlot(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	slot := NewRedisSlot[payload](client, "codecoach:news")

	_, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	fetched := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, slot.Store(ctx, Entry[payload]{Value: payload{Items: []string{"x", "y"}}, FetchedAt: fetched, TTL: time.Hour}))

	entry, ok, err := slot.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"x", "y"}, entry.Value.Items)
	require.True(t, entry.FetchedAt.Equal(fetched))
	require.Equal(t, time.Hour, entry.TTL)

	srv.FastForward(2 * time.Hour)
	_, ok, err = slot.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, slot.Store(ctx, Entry[payload]{FetchedAt: fetched, TTL: time.Hour}))
	require.NoError(t, slot.Clear(ctx))
	require.False(t, srv.Exists("codecoach:news"))
}

func TestRedisSlotRejectsCorruptPayload(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer client.Close()

	require.NoError(t, srv.Set("codecoach:news", "not-json"))

	_, _, err := NewRedisSlot[payload](client, "codecoach:news").Load(ctx)
	require.Error(t, err)
}
