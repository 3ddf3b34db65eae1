package appendlog

import (
	"context"
	"sync"
)

// Mem is an in-memory Log, for fast unit tests.
type Mem struct {
	mu   sync.Mutex
	data []byte
}

var _ Log = (*Mem)(nil)

func NewMem() *Mem {
	return &Mem{}
}

func (m *Mem) AppendBlock(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(m.data, data...)
	return nil
}

func (m *Mem) ReadAll(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *Mem) Delete(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = nil
	return nil
}

func (m *Mem) Create(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = []byte{}
	}
	return nil
}
