package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "abc123.pdf", []byte("pdf bytes"), "application/pdf"))

	data, err := store.Get(ctx, "abc123.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("pdf bytes"), data)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"abc123.pdf"}, keys)
}

func TestFSStoreGetMissing(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFSStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "k", []byte("v"), ""))
	require.NoError(t, store.Delete(ctx, "k"))
	require.NoError(t, store.Delete(ctx, "k"))

	keys, err := store.List(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
}
