package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamNilotpal/bagwriter/internal/core/domain"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, validateConfig(cfg))

	opts, err := cfg.CompressionOptions()
	require.NoError(t, err)
	assert.Equal(t, domain.CompressionModeFile, opts.Mode)
	assert.Equal(t, "zstd", opts.CompressionFormat)

	// Fresh bag names on every call so repeated runs never collide.
	assert.NotEqual(t, cfg.Recording.BagName, DefaultConfig().Recording.BagName)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage_path: /data/bags
recording:
  bag_name: session_1
  max_bagfile_size: 52428800
compression:
  format: gz
  mode: MESSAGE
  queue_size: 10
  thread_count: 2
  thread_priority: 5
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/bags", cfg.StoragePath)
	assert.Equal(t, "session_1", cfg.Recording.BagName)
	assert.Equal(t, uint64(52428800), cfg.Recording.MaxBagfileSize)

	opts, err := cfg.CompressionOptions()
	require.NoError(t, err)
	assert.Equal(t, domain.CompressionModeMessage, opts.Mode)
	assert.Equal(t, "gz", opts.CompressionFormat)
	assert.Equal(t, uint64(10), opts.QueueSize)
	assert.Equal(t, uint64(2), opts.ThreadCount)
	require.NotNil(t, opts.ThreadPriority)
	assert.Equal(t, 5, *opts.ThreadPriority)
}

func TestLoadConfigRejectsInvalidMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage_path: /data/bags
recording:
  bag_name: session_1
compression:
  mode: sideways
`), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "compression.mode")
}

func TestLoadConfigMissingRequiredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recorder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recording:\n  bag_name: x\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "storage_path")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
