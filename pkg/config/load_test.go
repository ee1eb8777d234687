package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingFieldsRetainDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"watch_folders":["/w"]}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/w"}, cfg.WatchFolders)
	assert.Equal(t, DefaultJPEGQuality, cfg.JPEGQuality)
	assert.Equal(t, DefaultOutputPolicy, cfg.OutputPolicy)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.WatchFolders = []string{"/w/one", "/w/two"}
	cfg.Paused = true
	cfg.OutputPolicy = OutputPolicyReplace

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	// Save must not leave a staging file behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
