package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCache_RoundTrip(t *testing.T) {
	t.Parallel()

	c := New()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "project:ab12")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Put(ctx, "project:ab12", "v1"))
	val, ok, err := c.Get(ctx, "project:ab12")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v1", val)
	require.Equal(t, 1, c.Len())

	c.Delete(ctx, "project:ab12")
	_, ok, _ = c.Get(ctx, "project:ab12")
	require.False(t, ok)
}
