package pager_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/ironkv/ironkv/internal/ironerr"
	"github.com/ironkv/ironkv/internal/pager"
	"github.com/ironkv/ironkv/internal/pagestore"
	"github.com/stretchr/testify/require"
)

func page(b byte) []byte {
	return bytes.Repeat([]byte{b}, pagestore.PageSize)
}

func TestPager_PutThenGetHits(t *testing.T) {
	ctx := context.Background()
	store := pagestore.NewMem()
	p := pager.New(store, 4)

	require.NoError(t, p.Put(ctx, 1, page(0x11)))
	got, err := p.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, page(0x11), got)
}

func TestPager_GetMissFallsThroughToStore(t *testing.T) {
	ctx := context.Background()
	store := pagestore.NewMem()
	require.NoError(t, store.WritePage(ctx, 9, page(0x22)))

	p := pager.New(store, 4)
	got, err := p.Get(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, page(0x22), got)
}

func TestPager_EvictsLRUAndWritesBackDirty(t *testing.T) {
	ctx := context.Background()
	store := pagestore.NewMem()
	p := pager.New(store, 2)

	require.NoError(t, p.Put(ctx, 1, page(1)))
	require.NoError(t, p.Put(ctx, 2, page(2)))
	// touch 1 so 2 becomes LRU
	_, err := p.Get(ctx, 1)
	require.NoError(t, err)

	require.NoError(t, p.Put(ctx, 3, page(3)))

	// page 2 should have been written back since it was dirty
	onDisk, err := store.ReadPage(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, page(2), onDisk)

	stats := p.Stats()
	require.Equal(t, 2, stats.FramesUsed)
}

func TestPager_PinnedFrameNeverEvicted(t *testing.T) {
	ctx := context.Background()
	store := pagestore.NewMem()
	p := pager.New(store, 1)

	require.NoError(t, p.Put(ctx, 1, page(1)))
	require.NoError(t, p.Pin(1))

	err := p.Put(ctx, 2, page(2))
	require.Error(t, err)
	require.True(t, ironerr.Is(err, ironerr.KindBufferPoolExhausted))
}

func TestPager_UnpinThenEvictSucceeds(t *testing.T) {
	ctx := context.Background()
	store := pagestore.NewMem()
	p := pager.New(store, 1)

	require.NoError(t, p.Put(ctx, 1, page(1)))
	require.NoError(t, p.Pin(1))
	require.NoError(t, p.Unpin(1))

	require.NoError(t, p.Put(ctx, 2, page(2)))
}

func TestPager_DirtyPagesAndClearDirty(t *testing.T) {
	ctx := context.Background()
	store := pagestore.NewMem()
	p := pager.New(store, 4)

	require.NoError(t, p.Put(ctx, 1, page(1)))
	dirty := p.DirtyPages()
	require.Len(t, dirty, 1)

	p.ClearDirty(1)
	dirty = p.DirtyPages()
	require.Empty(t, dirty)
}

func TestPager_PinUnknownPageFails(t *testing.T) {
	store := pagestore.NewMem()
	p := pager.New(store, 4)

	err := p.Pin(999)
	require.Error(t, err)
	require.True(t, ironerr.Is(err, ironerr.KindPageNotFound))
}
