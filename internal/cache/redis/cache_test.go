package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return NewWithClient(client)
}

func TestCache_GetMiss(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	val, ok, err := c.Get(context.Background(), "project:ab12")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, val)
}

func TestCache_PutThenGet(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	require.NoError(t, c.Put(context.Background(), "project:ab12", `{"code":"x()"}`))

	val, ok, err := c.Get(context.Background(), "project:ab12")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"code":"x()"}`, val)
}

func TestCache_PutHasNoExpiry(t *testing.T) {
	t.Parallel()

	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})
	c := NewWithClient(client)

	require.NoError(t, c.Put(context.Background(), "project:ab12", "v"))
	require.Zero(t, srv.TTL("project:ab12"))
}

func TestNew_RequiresAddr(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}
