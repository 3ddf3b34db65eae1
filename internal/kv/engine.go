package kv

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/ironkv/ironkv/internal/appendlog"
	"github.com/ironkv/ironkv/internal/ironerr"
	"github.com/ironkv/ironkv/internal/pager"
	"github.com/ironkv/ironkv/internal/pagestore"
	"github.com/ironkv/ironkv/internal/wal"
)

// Engine translates Set/Get/Delete/Scan into Pager and WAL operations,
// enforcing the write-ahead protocol (WAL append happens-before both the
// Pager put and the index update) and owning the in-memory index.
type Engine struct {
	store pagestore.Store
	log   *slog.Logger

	pager *pager.Pager
	wal   *wal.Manager

	keyMax int

	mu         sync.Mutex
	index      map[string]uint64 // key -> pageID
	nextPageID uint64
}

// Config holds the tunables named in SPEC_FULL.md §6.
type Config struct {
	BufferFrames int // default 12288 (50 MiB) if zero
	KeyMax       int // default KeyMax (256) if zero; capped at KeyMax
	WalRetries   int // default 5 if zero
}

// Open constructs the Pager and WAL over store/al, runs WAL replay to
// rebuild the index and page-id allocator, and returns a ready Engine.
func Open(ctx context.Context, store pagestore.Store, al appendlog.Log, cfg Config) (*Engine, error) {
	frames := cfg.BufferFrames
	if frames <= 0 {
		frames = 12288
	}
	keyMax := cfg.KeyMax
	if keyMax <= 0 || keyMax > KeyMax {
		keyMax = KeyMax
	}

	e := &Engine{
		store:      store,
		log:        slog.Default(),
		pager:      pager.New(store, frames),
		wal:        wal.Open(al, cfg.WalRetries),
		keyMax:     keyMax,
		index:      make(map[string]uint64),
		nextPageID: 1,
	}

	if err := e.recover(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

// recover replays the WAL and rebuilds the index and page-id allocator,
// per SPEC_FULL.md §4.3 Recovery.
func (e *Engine) recover(ctx context.Context) error {
	entries, err := e.wal.Replay(ctx)
	if err != nil {
		return err
	}

	for _, ent := range entries {
		switch ent.Kind {
		case wal.EntrySet:
			pageID, ok := e.index[ent.Key]
			if !ok {
				pageID = e.nextPageID
				e.nextPageID++
			}
			rec, err := encodeRecord(ent.LSN, ent.Key, ent.Value)
			if err != nil {
				return err
			}
			if err := e.pager.Put(ctx, pageID, rec); err != nil {
				return err
			}
			e.index[ent.Key] = pageID
			if pageID >= e.nextPageID {
				e.nextPageID = pageID + 1
			}
		case wal.EntryDelete:
			delete(e.index, ent.Key)
		case wal.EntryCheckpoint:
			// marker only; no state change.
		}
	}
	return nil
}

// Set validates key/value sizing, resolves or allocates the page id for
// key, appends a WAL Set record, then installs the encoded page and
// updates the index (O1: WAL happens-before Pager put happens-before index).
func (e *Engine) Set(ctx context.Context, key, value string) error {
	if len(key) > e.keyMax {
		return ironerr.New("kv.Set", ironerr.KindKeyTooLarge, nil)
	}
	if offPayload+len(key)+len(value) > pagestore.PageSize {
		return ironerr.New("kv.Set", ironerr.KindValueTooLarge, nil)
	}

	// Reserve the page id for a new key atomically with the lookup: the
	// allocator must advance in the same critical section that reads it,
	// or two concurrent Sets on different new keys can race onto the
	// same page id (mirrors wal.Manager.append's m.lsn reservation).
	e.mu.Lock()
	pageID, exists := e.index[key]
	if !exists {
		pageID = e.nextPageID
		e.nextPageID++
	}
	e.mu.Unlock()

	lsn, err := e.wal.AppendSet(ctx, key, value)
	if err != nil {
		return err
	}

	rec, err := encodeRecord(lsn, key, value)
	if err != nil {
		// The WAL record is already durable; recovery will reapply it.
		return err
	}

	if err := e.pager.Put(ctx, pageID, rec); err != nil {
		// The WAL record remains durable for the next recovery to
		// reapply.
		return err
	}

	e.mu.Lock()
	e.index[key] = pageID
	e.mu.Unlock()

	return nil
}

// Get looks up key in the index, pins the resident/fetched page, decodes
// and validates it, and returns (value, true) or ("", false) on absence
// or on any format/checksum failure (logged as a warning; repaired by the
// next Set or Delete of the same key, per invariant I1).
func (e *Engine) Get(ctx context.Context, key string) (string, bool, error) {
	e.mu.Lock()
	pageID, ok := e.index[key]
	e.mu.Unlock()
	if !ok {
		return "", false, nil
	}

	// Ensure resident (fetches from the store on miss) before pinning.
	data, err := e.pager.Get(ctx, pageID)
	if err != nil {
		return "", false, err
	}
	if data == nil {
		return "", false, nil
	}

	if err := e.pager.Pin(pageID); err == nil {
		defer func() { _ = e.pager.Unpin(pageID) }()
	}

	return e.decodeAndCheck(data, key)
}

func (e *Engine) decodeAndCheck(data []byte, key string) (string, bool, error) {
	rec, err := decodeRecord(data)
	if err != nil {
		e.log.Warn("kv: record failed validation on read", "key", key, "err", err)
		return "", false, nil
	}
	if rec.Key != key {
		e.log.Warn("kv: decoded key mismatch on read", "want", key, "got", rec.Key)
		return "", false, nil
	}
	return rec.Value, true, nil
}

// Delete removes key from the index and tombstones its page, returning
// whether the key was present. Absent keys produce no WAL activity.
func (e *Engine) Delete(ctx context.Context, key string) (bool, error) {
	e.mu.Lock()
	pageID, ok := e.index[key]
	e.mu.Unlock()
	if !ok {
		return false, nil
	}

	if _, err := e.wal.AppendDelete(ctx, key); err != nil {
		return false, err
	}

	e.mu.Lock()
	delete(e.index, key)
	e.mu.Unlock()

	zero := make([]byte, pagestore.PageSize)
	if err := e.pager.Put(ctx, pageID, zero); err != nil {
		return false, err
	}
	return true, nil
}

// KV is a single scanned entry.
type KV struct {
	Key   string
	Value string
}

// Scan iterates the index in key order, performing a Get for each and
// skipping entries whose Get returns absence. No snapshot semantics.
func (e *Engine) Scan(ctx context.Context) ([]KV, error) {
	e.mu.Lock()
	keys := make([]string, 0, len(e.index))
	for k := range e.index {
		keys = append(keys, k)
	}
	e.mu.Unlock()
	sort.Strings(keys)

	out := make([]KV, 0, len(keys))
	for _, k := range keys {
		v, ok, err := e.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, KV{Key: k, Value: v})
		}
	}
	return out, nil
}

// Flush writes through every dirty page in the Pager, clears its dirty
// bit, then flushes the underlying store. The WAL is not truncated.
func (e *Engine) Flush(ctx context.Context) error {
	for pageID, data := range e.pager.DirtyPages() {
		if err := e.store.WritePage(ctx, pageID, data); err != nil {
			return err
		}
		e.pager.ClearDirty(pageID)
	}
	return e.store.Flush(ctx)
}

// Checkpoint flushes, records a WAL checkpoint, then truncates the WAL.
// After this returns, the page store alone suffices to serve all reads.
func (e *Engine) Checkpoint(ctx context.Context) error {
	if err := e.Flush(ctx); err != nil {
		return err
	}
	if _, err := e.wal.Checkpoint(ctx); err != nil {
		return err
	}
	return e.wal.Truncate(ctx)
}

// Stats reports the counters named in SPEC_FULL.md §6.
type Stats struct {
	NumKeys      int
	WalLSN       uint64
	FramesUsed   int
	FramesDirty  int
	FramesPinned int
}

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	numKeys := len(e.index)
	e.mu.Unlock()

	ps := e.pager.Stats()
	return Stats{
		NumKeys:      numKeys,
		WalLSN:       e.wal.LSN(),
		FramesUsed:   ps.FramesUsed,
		FramesDirty:  ps.FramesDirty,
		FramesPinned: ps.FramesPinned,
	}
}
