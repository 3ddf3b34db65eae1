package appendlog

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/ironkv/ironkv/internal/ironerr"
)

// FileLog is a local-file-backed Log standing in for the real remote
// append-only log transport, which this module treats as an external
// collaborator out of scope for implementation (SPEC_FULL.md §1).
type FileLog struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

var _ Log = (*FileLog)(nil)

func OpenFileLog(path string) (*FileLog, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, ironerr.New("appendlog.OpenFileLog", ironerr.KindIO, err)
	}
	return &FileLog{path: path, f: f}, nil
}

func (l *FileLog) AppendBlock(_ context.Context, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.f.Write(data); err != nil {
		return ironerr.New("appendlog.FileLog.AppendBlock", ironerr.KindIO, err)
	}
	return nil
}

func (l *FileLog) ReadAll(_ context.Context) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.f.Sync(); err != nil {
		return nil, ironerr.New("appendlog.FileLog.ReadAll", ironerr.KindIO, err)
	}
	r, err := os.Open(l.path)
	if err != nil {
		return nil, ironerr.New("appendlog.FileLog.ReadAll", ironerr.KindIO, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ironerr.New("appendlog.FileLog.ReadAll", ironerr.KindIO, err)
	}
	return data, nil
}

// Delete closes and removes the backing file. Create must be called
// before the log is used again.
func (l *FileLog) Delete(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return ironerr.New("appendlog.FileLog.Delete", ironerr.KindIO, err)
	}
	return nil
}

func (l *FileLog) Create(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return ironerr.New("appendlog.FileLog.Create", ironerr.KindIO, err)
	}
	l.f = f
	return nil
}

func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}
