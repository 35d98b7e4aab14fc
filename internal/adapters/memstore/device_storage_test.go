package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceStorage_RoundTrip(t *testing.T) {
	s := NewDeviceStorage()
	ctx := context.Background()
	ns := s.ForDevice("dev-1")

	_, found, err := ns.GetItem(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, ns.SetItem(ctx, "auth_token", "tok"))
	v, found, err := ns.GetItem(ctx, "auth_token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "tok", v)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, ns.RemoveItem(ctx, "auth_token"))
	_, found, err = ns.GetItem(ctx, "auth_token")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, s.Len())
}

func TestDeviceStorage_DevicesAreIsolated(t *testing.T) {
	s := NewDeviceStorage()
	ctx := context.Background()

	require.NoError(t, s.ForDevice("a").SetItem(ctx, "k", "from-a"))
	_, found, err := s.ForDevice("b").GetItem(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.ForDevice("b").RemoveItem(ctx, "k"))
	v, _, _ := s.ForDevice("a").GetItem(ctx, "k")
	assert.Equal(t, "from-a", v)
}

func TestDeviceStorage_CanceledContext(t *testing.T) {
	s := NewDeviceStorage()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, s.ForDevice("a").SetItem(ctx, "k", "v"), context.Canceled)
	_, _, err := s.ForDevice("a").GetItem(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}
