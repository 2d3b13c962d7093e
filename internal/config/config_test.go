package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8501", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"raw_data_dir: /srv/violbr\nhttp_addr: \":9000\"\nquery_timeout: 5s\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/violbr", cfg.RawDataDir)
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.QueryTimeout)
	assert.Equal(t, Default().DatabasePath, cfg.DatabasePath, "unset keys keep defaults")
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("query_timeout: 0s\ncache_size: -1\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 64, cfg.CacheSize)
}
