package ironkv_test

import (
	"context"
	"testing"

	"github.com/ironkv/ironkv"
	"github.com/ironkv/ironkv/internal/config"
	"github.com/stretchr/testify/require"
)

func TestStore_OpenMem_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := ironkv.OpenMem(ctx, 64)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Set(ctx, "k", "v"))
	v, ok, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)

	deleted, err := s.Delete(ctx, "k")
	require.NoError(t, err)
	require.True(t, deleted)
}

func TestStore_OpenFile_RecoversFromWALAfterReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.BufferFrames = 64

	s1, err := ironkv.OpenFile(ctx, dir, cfg)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "k", "v"))
	// No checkpoint: the page was never flushed, so recovery on reopen
	// must come purely from replaying the WAL.
	require.NoError(t, s1.Close())

	s2, err := ironkv.OpenFile(ctx, dir, cfg)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()

	v, ok, err := s2.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v", v)
}

func TestStore_ClosedRejectsOperations(t *testing.T) {
	ctx := context.Background()
	s, err := ironkv.OpenMem(ctx, 64)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Set(ctx, "k", "v")
	require.ErrorIs(t, err, ironkv.ErrClosed)
}
