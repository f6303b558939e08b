package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SetGet(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Set(ctx, KeyCart, []byte(`[{"id":"x"}]`)))

	data, err := fs.Get(ctx, KeyCart)
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"x"}]`), data)
}

func TestFileStore_GetMissingKey(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestFileStore_Overwrite(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Set(ctx, KeyToken, []byte("first")))
	require.NoError(t, fs.Set(ctx, KeyToken, []byte("second")))

	data, err := fs.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestFileStore_Delete(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Set(ctx, KeyUser, []byte("{}")))
	require.NoError(t, fs.Delete(ctx, KeyUser))

	_, err = fs.Get(ctx, KeyUser)
	assert.ErrorIs(t, err, ErrKeyNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, fs.Delete(ctx, KeyUser))
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.Set(ctx, KeyUserEmail, []byte("a@b.c")))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)
	data, err := reopened.Get(ctx, KeyUserEmail)
	require.NoError(t, err)
	assert.Equal(t, []byte("a@b.c"), data)
}
