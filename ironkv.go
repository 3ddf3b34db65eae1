// Package ironkv is the top-level facade over the KV engine: open a store
// with OpenFile (local-file collaborators) or OpenMem (in-memory, for
// tests), then call Set/Get/Delete/Scan/Flush/Checkpoint/Stats/Close.
package ironkv

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/ironkv/ironkv/internal/appendlog"
	"github.com/ironkv/ironkv/internal/config"
	"github.com/ironkv/ironkv/internal/kv"
	"github.com/ironkv/ironkv/internal/pagestore"
)

var ErrClosed = errors.New("ironkv: store is closed")

// Stats mirrors kv.Stats, the operational counters named in SPEC_FULL.md §6.
type Stats = kv.Stats

// KV is a single scanned entry.
type KV = kv.KV

// Store is a crash-safe key-value store: SET/GET/DELETE/SCAN against an
// in-process page cache, durably logged to a write-ahead log before
// becoming visible.
type Store struct {
	engine *kv.Engine
	closer func() error
	closed bool
}

// OpenMem opens a Store entirely in memory: useful for tests and demos
// that do not need data to outlive the process.
func OpenMem(ctx context.Context, bufferFrames int) (*Store, error) {
	store := pagestore.NewMem()
	al := appendlog.NewMem()

	e, err := kv.Open(ctx, store, al, kv.Config{BufferFrames: bufferFrames})
	if err != nil {
		return nil, err
	}
	return &Store{engine: e, closer: func() error { return nil }}, nil
}

// OpenFile opens a Store backed by local files under dir: a page blob
// file and an append-only WAL file, standing in for the real remote
// collaborators (out of scope transports; see SPEC_FULL.md §1).
func OpenFile(ctx context.Context, dir string, cfg config.Config) (*Store, error) {
	ps, err := pagestore.OpenFileStore(filepath.Join(dir, "pages.blob"))
	if err != nil {
		return nil, err
	}

	al, err := appendlog.OpenFileLog(filepath.Join(dir, "wal.jsonl"))
	if err != nil {
		_ = ps.Close()
		return nil, err
	}

	e, err := kv.Open(ctx, ps, al, kv.Config{
		BufferFrames: cfg.Storage.BufferFrames,
		KeyMax:       cfg.Storage.KeyMax,
		WalRetries:   cfg.Storage.WalRetries,
	})
	if err != nil {
		_ = ps.Close()
		_ = al.Close()
		return nil, err
	}

	return &Store{
		engine: e,
		closer: func() error {
			err1 := ps.Close()
			err2 := al.Close()
			if err1 != nil {
				return err1
			}
			return err2
		},
	}, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.closed {
		return ErrClosed
	}
	return s.engine.Set(ctx, key, value)
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if s.closed {
		return "", false, ErrClosed
	}
	return s.engine.Get(ctx, key)
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	return s.engine.Delete(ctx, key)
}

func (s *Store) Scan(ctx context.Context) ([]KV, error) {
	if s.closed {
		return nil, ErrClosed
	}
	return s.engine.Scan(ctx)
}

func (s *Store) Flush(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return s.engine.Flush(ctx)
}

func (s *Store) Checkpoint(ctx context.Context) error {
	if s.closed {
		return ErrClosed
	}
	return s.engine.Checkpoint(ctx)
}

func (s *Store) Stats() Stats {
	return s.engine.Stats()
}

// Close releases the underlying file collaborators. It does not flush or
// checkpoint; call those explicitly first if durability is required.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.closer()
}
