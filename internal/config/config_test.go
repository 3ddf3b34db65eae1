package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ironkv/ironkv/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoad_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ironkv.yaml")
	yaml := `
storage:
  workdir: /var/lib/ironkv
  buffer_frames: 4096
server:
  addr: "0.0.0.0:9000"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/ironkv", cfg.Storage.Workdir)
	require.Equal(t, 4096, cfg.Storage.BufferFrames)
	require.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	// unset fields keep defaults
	require.Equal(t, 256, cfg.Storage.KeyMax)
}

func TestDefault_MatchesSpecValues(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, 4096, cfg.Storage.PageSize)
	require.Equal(t, 256, cfg.Storage.KeyMax)
	require.Equal(t, 12288, cfg.Storage.BufferFrames)
	require.Equal(t, 5, cfg.Storage.WalRetries)
}
