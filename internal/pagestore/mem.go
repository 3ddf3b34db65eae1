package pagestore

import (
	"context"
	"sync"

	"github.com/ironkv/ironkv/internal/ironerr"
)

// Mem is an in-memory Store, for fast unit tests that do not need real
// persistence across process restarts.
type Mem struct {
	mu    sync.Mutex
	pages map[uint64][]byte
}

var _ Store = (*Mem)(nil)

func NewMem() *Mem {
	return &Mem{pages: make(map[uint64][]byte)}
}

func (m *Mem) ReadPage(_ context.Context, pageID uint64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if p, ok := m.pages[pageID]; ok {
		out := make([]byte, PageSize)
		copy(out, p)
		return out, nil
	}
	return make([]byte, PageSize), nil
}

func (m *Mem) WritePage(_ context.Context, pageID uint64, data []byte) error {
	if len(data) != PageSize {
		return ironerr.New("pagestore.Mem.WritePage", ironerr.KindInvalidPageFormat, nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, PageSize)
	copy(buf, data)
	m.pages[pageID] = buf
	return nil
}

func (m *Mem) Flush(_ context.Context) error { return nil }

func (m *Mem) PageSize() int { return PageSize }
