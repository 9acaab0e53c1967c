package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root: /data/nrl
timeout: 10s
cache_size: 128
fetch_cache: /tmp/nrl-fetch.db
`), 0o644))

	c, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/nrl", c.Root)
	assert.Equal(t, 10*time.Second, c.Timeout)
	assert.Equal(t, 128, c.CacheSize)
	assert.Equal(t, "/tmp/nrl-fetch.db", c.FetchCache)
}

func TestLoadConfig_ExplicitMissingFileErrors(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: [\n"), 0o644))
	_, err := loadConfig(path)
	require.Error(t, err)
}
