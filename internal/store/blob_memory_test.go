package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlob_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	blob := NewMemoryBlob()

	_, found, err := blob.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, blob.Put(ctx, "k", []byte("v1")))
	require.NoError(t, blob.Put(ctx, "k", []byte("v2")))

	data, found, err := blob.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("v2"), data)

	require.NoError(t, blob.Delete(ctx, "k"))

	_, found, err = blob.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryBlob_ListByPrefix(t *testing.T) {
	ctx := context.Background()
	blob := NewMemoryBlob()

	require.NoError(t, blob.Put(ctx, "vaults/a/ciphers/1", []byte("{}")))
	require.NoError(t, blob.Put(ctx, "vaults/a/ciphers/2", []byte("{}")))
	require.NoError(t, blob.Put(ctx, "vaults/b/folders/1", []byte("{}")))

	keys, err := blob.List(ctx, "vaults/a/")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	keys, err = blob.List(ctx, "vaults/")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	keys, err = blob.List(ctx, "other/")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryBlob_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	blob := NewMemoryBlob()

	require.NoError(t, blob.Put(ctx, "k", []byte("original")))

	data, _, err := blob.Get(ctx, "k")
	require.NoError(t, err)
	data[0] = 'X'

	again, _, err := blob.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again, "callers must not be able to mutate stored bytes")
}
