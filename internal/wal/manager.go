// Package wal implements the write-ahead log: LSN assignment, JSON-lines
// record encoding, replay-on-startup, and checkpoint-driven truncation,
// layered over an appendlog.Log.
package wal

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ironkv/ironkv/internal/appendlog"
	"github.com/ironkv/ironkv/internal/ironerr"
)

const (
	defaultMaxAttempts = 5
	backoffUnit        = 50 * time.Millisecond
)

// EntryKind tags which variant a decoded Entry holds.
type EntryKind int

const (
	EntrySet EntryKind = iota
	EntryDelete
	EntryCheckpoint
)

// Entry is one WAL record, decoded from its JSON-lines wire form.
type Entry struct {
	Kind  EntryKind
	LSN   uint64
	Key   string
	Value string
}

// wireRecord is the on-disk JSON shape: a tagged union flattened into one
// object, matching spec.md §4.2's Set/Delete/Checkpoint record variants.
type wireRecord struct {
	Op    string `json:"op"`
	LSN   uint64 `json:"lsn,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

// Manager assigns LSNs, serializes records, and replays/truncates the
// underlying append log.
type Manager struct {
	log *slog.Logger
	al  appendlog.Log

	maxAttempts int

	mu  sync.Mutex
	lsn uint64
}

// Open builds a Manager over al. maxAttempts caps the total number of
// AppendBlock calls (the first try included) before an append gives up and
// rolls back its LSN; a non-positive value falls back to defaultMaxAttempts.
func Open(al appendlog.Log, maxAttempts int) *Manager {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &Manager{al: al, log: slog.Default(), maxAttempts: maxAttempts}
}

// AppendSet durably records a Set(key, value) and returns its LSN.
func (m *Manager) AppendSet(ctx context.Context, key, value string) (uint64, error) {
	return m.append(ctx, wireRecord{Op: "set", Key: key, Value: value})
}

// AppendDelete durably records a Delete(key) and returns its LSN.
func (m *Manager) AppendDelete(ctx context.Context, key string) (uint64, error) {
	return m.append(ctx, wireRecord{Op: "delete", Key: key})
}

// Checkpoint durably records a Checkpoint marker carrying the current LSN,
// and returns the LSN assigned to the marker itself.
func (m *Manager) Checkpoint(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	current := m.lsn
	m.mu.Unlock()
	return m.append(ctx, wireRecord{Op: "checkpoint", LSN: current})
}

// append assigns the next LSN, serializes rec, and appends it to the
// underlying log, retrying transient failures. Set and Delete records carry
// their assigned LSN; a Checkpoint record keeps the LSN it was given. On
// exhausted retries the LSN counter is rolled back so the failed mutation
// never appears to have happened.
func (m *Manager) append(ctx context.Context, rec wireRecord) (uint64, error) {
	m.mu.Lock()
	m.lsn++
	lsn := m.lsn
	if rec.Op != "checkpoint" {
		rec.LSN = lsn
	}
	m.mu.Unlock()

	line, err := json.Marshal(rec)
	if err != nil {
		m.rollback(lsn)
		return 0, ironerr.New("wal.append", ironerr.KindSerialization, err)
	}
	line = append(line, '\n')

	var lastErr error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if err := m.al.AppendBlock(ctx, line); err != nil {
			lastErr = err
			m.log.Warn("wal: append attempt failed", "attempt", attempt, "err", err)
			if attempt < m.maxAttempts {
				select {
				case <-time.After(time.Duration(attempt) * backoffUnit):
				case <-ctx.Done():
					m.rollback(lsn)
					return 0, ctx.Err()
				}
			}
			continue
		}
		return lsn, nil
	}

	m.rollback(lsn)
	return 0, ironerr.New("wal.append", ironerr.KindIO, lastErr)
}

// rollback reverts the LSN counter after a final append failure, so the
// next append reuses the LSN that was never made durable.
func (m *Manager) rollback(lsn uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lsn == lsn {
		m.lsn--
	}
}

// Replay reads every record from the underlying log in order, skipping
// blank and corrupted lines, and sets the LSN counter to the highest LSN
// observed (0 if the log was empty).
func (m *Manager) Replay(ctx context.Context) ([]Entry, error) {
	data, err := m.al.ReadAll(ctx)
	if err != nil {
		return nil, ironerr.New("wal.Replay", ironerr.KindIO, err)
	}

	var entries []Entry
	var maxLSN uint64

	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var rec wireRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			m.log.Warn("wal: skipping corrupted record during replay", "err", err)
			continue
		}

		var kind EntryKind
		switch rec.Op {
		case "set":
			kind = EntrySet
		case "delete":
			kind = EntryDelete
		case "checkpoint":
			kind = EntryCheckpoint
		default:
			m.log.Warn("wal: skipping record with unknown op during replay", "op", rec.Op)
			continue
		}

		entries = append(entries, Entry{Kind: kind, LSN: rec.LSN, Key: rec.Key, Value: rec.Value})
		if rec.LSN > maxLSN {
			maxLSN = rec.LSN
		}
	}

	m.mu.Lock()
	m.lsn = maxLSN
	m.mu.Unlock()

	return entries, nil
}

// Truncate deletes and recreates the append log, resetting the LSN
// counter to 0. Callers must checkpoint and flush all dirty pages first.
func (m *Manager) Truncate(ctx context.Context) error {
	if err := m.al.Delete(ctx); err != nil {
		return ironerr.New("wal.Truncate", ironerr.KindIO, err)
	}
	if err := m.al.Create(ctx); err != nil {
		return ironerr.New("wal.Truncate", ironerr.KindIO, err)
	}

	m.mu.Lock()
	m.lsn = 0
	m.mu.Unlock()
	return nil
}

// LSN reports the current (last-assigned) LSN.
func (m *Manager) LSN() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lsn
}
