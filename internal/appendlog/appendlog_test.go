package appendlog_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ironkv/ironkv/internal/appendlog"
	"github.com/stretchr/testify/require"
)

func testLogs(t *testing.T) map[string]appendlog.Log {
	t.Helper()
	fileLog, err := appendlog.OpenFileLog(filepath.Join(t.TempDir(), "log.jsonl"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = fileLog.Close() })

	return map[string]appendlog.Log{
		"mem":  appendlog.NewMem(),
		"file": fileLog,
	}
}

func TestLog_AppendAndReadAll(t *testing.T) {
	ctx := context.Background()
	for name, l := range testLogs(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, l.AppendBlock(ctx, []byte("one\n")))
			require.NoError(t, l.AppendBlock(ctx, []byte("two\n")))

			got, err := l.ReadAll(ctx)
			require.NoError(t, err)
			require.Equal(t, "one\ntwo\n", string(got))
		})
	}
}

func TestLog_DeleteThenCreateResets(t *testing.T) {
	ctx := context.Background()
	for name, l := range testLogs(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, l.AppendBlock(ctx, []byte("stale\n")))
			require.NoError(t, l.Delete(ctx))
			require.NoError(t, l.Create(ctx))

			got, err := l.ReadAll(ctx)
			require.NoError(t, err)
			require.Empty(t, got)

			require.NoError(t, l.AppendBlock(ctx, []byte("fresh\n")))
			got, err = l.ReadAll(ctx)
			require.NoError(t, err)
			require.Equal(t, "fresh\n", string(got))
		})
	}
}
