package pagestore_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/ironkv/ironkv/internal/pagestore"
	"github.com/stretchr/testify/require"
)

func TestMem_ReadUnwrittenPageIsZero(t *testing.T) {
	ctx := context.Background()
	m := pagestore.NewMem()

	data, err := m.ReadPage(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, pagestore.PageSize, len(data))
	require.True(t, bytes.Equal(data, make([]byte, pagestore.PageSize)))
}

func TestMem_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	m := pagestore.NewMem()

	want := bytes.Repeat([]byte{0xAB}, pagestore.PageSize)
	require.NoError(t, m.WritePage(ctx, 7, want))

	got, err := m.ReadPage(ctx, 7)
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, got))
}

func TestMem_WriteRejectsWrongSize(t *testing.T) {
	ctx := context.Background()
	m := pagestore.NewMem()
	err := m.WritePage(ctx, 0, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestFileStore_WriteReadRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := pagestore.OpenFileStore(filepath.Join(dir, "pages.blob"))
	require.NoError(t, err)
	defer fs.Close()

	want := bytes.Repeat([]byte{0x5A}, pagestore.PageSize)
	require.NoError(t, fs.WritePage(ctx, 3, want))
	require.NoError(t, fs.Flush(ctx))

	got, err := fs.ReadPage(ctx, 3)
	require.NoError(t, err)
	require.True(t, bytes.Equal(want, got))
}

func TestFileStore_ReadUnwrittenPageIsZero(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fs, err := pagestore.OpenFileStore(filepath.Join(dir, "pages.blob"))
	require.NoError(t, err)
	defer fs.Close()

	got, err := fs.ReadPage(ctx, 100)
	require.NoError(t, err)
	require.True(t, bytes.Equal(got, make([]byte, pagestore.PageSize)))
}
