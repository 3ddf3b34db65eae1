// Package pager implements the buffer pool that caches pages from a
// pagestore.Store behind a fixed number of frames, with LRU eviction and
// write-back of dirty victims.
package pager

import (
	"container/list"
	"context"
	"log/slog"
	"sync"

	"github.com/ironkv/ironkv/internal/ironerr"
	"github.com/ironkv/ironkv/internal/pagestore"
)

const logPrefix = "pager: "

// Frame holds one cached page and its bookkeeping.
type Frame struct {
	PageID   uint64
	Data     []byte
	Dirty    bool
	PinCount int
}

// Pager caches up to Capacity pages from an underlying pagestore.Store,
// evicting least-recently-used unpinned frames when full.
type Pager struct {
	store    pagestore.Store
	capacity int
	log      *slog.Logger

	mu       sync.Mutex
	frames   map[uint64]*list.Element // pageID -> element in lru, Value is *Frame
	lru      *list.List               // front = least-recently-used, back = most-recently-used
	numDirty int
}

// New builds a Pager with the given frame capacity over store.
func New(store pagestore.Store, capacity int) *Pager {
	if capacity <= 0 {
		capacity = 1
	}
	return &Pager{
		store:    store,
		capacity: capacity,
		log:      slog.Default(),
		frames:   make(map[uint64]*list.Element, capacity),
		lru:      list.New(),
	}
}

// touch marks elem as most-recently-used. The queue's tail holds the
// most-recently-used id, matching SPEC_FULL.md §4.1's eviction algorithm.
func (p *Pager) touch(elem *list.Element) {
	p.lru.MoveToBack(elem)
}

// Get returns the cached image of pageID, fetching from the store on a
// miss. It never fails with absence; PageStore errors classified as
// benign absence (PageNotFound, InvalidPageFormat) make Get return
// (nil, nil) instead of an error.
func (p *Pager) Get(ctx context.Context, pageID uint64) ([]byte, error) {
	p.mu.Lock()
	if elem, ok := p.frames[pageID]; ok {
		f := elem.Value.(*Frame)
		p.touch(elem)
		out := make([]byte, len(f.Data))
		copy(out, f.Data)
		p.log.Debug(logPrefix+"cache hit", "pageID", pageID)
		p.mu.Unlock()
		return out, nil
	}
	p.mu.Unlock()

	p.log.Debug(logPrefix+"cache miss", "pageID", pageID)
	data, err := p.store.ReadPage(ctx, pageID)
	if err != nil {
		if ironerr.Is(err, ironerr.KindPageNotFound) || ironerr.Is(err, ironerr.KindInvalidPageFormat) {
			p.log.Warn(logPrefix+"benign absence on read", "pageID", pageID, "err", err)
			return nil, nil
		}
		return nil, err
	}

	if err := p.admit(ctx, pageID, data, false); err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put installs page as the current image of pageID, marking the frame
// dirty, possibly evicting an LRU victim to make room.
func (p *Pager) Put(ctx context.Context, pageID uint64, page []byte) error {
	if len(page) != pagestore.PageSize {
		return ironerr.New("pager.Put", ironerr.KindInvalidPageFormat, nil)
	}
	return p.admit(ctx, pageID, page, true)
}

// admit installs data into pageID's frame (allocating/evicting as needed)
// and marks it dirty if markDirty is set.
func (p *Pager) admit(ctx context.Context, pageID uint64, data []byte, markDirty bool) error {
	p.mu.Lock()

	if elem, ok := p.frames[pageID]; ok {
		f := elem.Value.(*Frame)
		f.Data = append(f.Data[:0], data...)
		if markDirty && !f.Dirty {
			f.Dirty = true
			p.numDirty++
		}
		p.touch(elem)
		p.mu.Unlock()
		return nil
	}

	if len(p.frames) >= p.capacity {
		if err := p.evictLocked(ctx); err != nil {
			p.mu.Unlock()
			return err
		}
	}

	f := &Frame{PageID: pageID, Data: append([]byte(nil), data...), Dirty: markDirty}
	elem := p.lru.PushBack(f)
	p.frames[pageID] = elem
	if markDirty {
		p.numDirty++
	}
	p.mu.Unlock()
	return nil
}

// evictLocked must be called with p.mu held. It pops LRU candidates from
// the front of the queue until an unpinned one is found, writing it back
// first if dirty.
func (p *Pager) evictLocked(ctx context.Context) error {
	n := p.lru.Len()
	for i := 0; i < n; i++ {
		elem := p.lru.Front()
		if elem == nil {
			break
		}
		f := elem.Value.(*Frame)

		if f.PinCount > 0 {
			p.lru.MoveToBack(elem)
			continue
		}

		if f.Dirty {
			if err := p.store.WritePage(ctx, f.PageID, f.Data); err != nil {
				return ironerr.New("pager.evict", ironerr.KindIO, err)
			}
			p.numDirty--
			f.Dirty = false
			p.log.Debug(logPrefix+"wrote back dirty victim", "pageID", f.PageID)
		}

		p.lru.Remove(elem)
		delete(p.frames, f.PageID)
		p.log.Debug(logPrefix+"evicted", "pageID", f.PageID)
		return nil
	}
	return ironerr.New("pager.evict", ironerr.KindBufferPoolExhausted, nil)
}

// Pin increments pin_count for pageID. Fails if pageID is not resident.
func (p *Pager) Pin(pageID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	elem, ok := p.frames[pageID]
	if !ok {
		return ironerr.New("pager.Pin", ironerr.KindPageNotFound, nil)
	}
	f := elem.Value.(*Frame)
	f.PinCount++
	return nil
}

// Unpin decrements pin_count for pageID. Unpinning below zero is a no-op
// logged as a warning, since the spec treats it as a programming error
// rather than a hard failure.
func (p *Pager) Unpin(pageID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	elem, ok := p.frames[pageID]
	if !ok {
		return ironerr.New("pager.Unpin", ironerr.KindPageNotFound, nil)
	}
	f := elem.Value.(*Frame)
	if f.PinCount <= 0 {
		p.log.Warn(logPrefix+"unpin below zero", "pageID", pageID)
		return nil
	}
	f.PinCount--
	return nil
}

// DirtyPages returns a point-in-time snapshot of currently dirty frames.
func (p *Pager) DirtyPages() map[uint64][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[uint64][]byte)
	for elem := p.lru.Front(); elem != nil; elem = elem.Next() {
		f := elem.Value.(*Frame)
		if f.Dirty {
			cp := make([]byte, len(f.Data))
			copy(cp, f.Data)
			out[f.PageID] = cp
		}
	}
	return out
}

// ClearDirty marks pageID's frame clean. Intended to be called after the
// caller has persisted the page itself.
func (p *Pager) ClearDirty(pageID uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	elem, ok := p.frames[pageID]
	if !ok {
		return
	}
	f := elem.Value.(*Frame)
	if f.Dirty {
		f.Dirty = false
		p.numDirty--
	}
}

// Stats reports the counters KVEngine.Stats() needs. The used and dirty
// counts are kept as running counters; the pinned count is computed by
// walking every frame.
type Stats struct {
	FramesUsed   int
	FramesDirty  int
	FramesPinned int
}

func (p *Pager) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	pinned := 0
	for elem := p.lru.Front(); elem != nil; elem = elem.Next() {
		if elem.Value.(*Frame).PinCount > 0 {
			pinned++
		}
	}
	return Stats{
		FramesUsed:   len(p.frames),
		FramesDirty:  p.numDirty,
		FramesPinned: pinned,
	}
}
