package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureValidRejectsRelativeWatchFolder(t *testing.T) {
	cfg := Default()
	cfg.WatchFolders = []string{"relative/path"}
	_, _, err := EnsureValid(cfg, "", nil)
	assert.Error(t, err)
}

func TestEnsureValidRejectsOutOfRangeQuality(t *testing.T) {
	cfg := Default()
	cfg.WatchFolders = []string{"/w"}
	cfg.JPEGQuality = 101
	_, _, err := EnsureValid(cfg, "", nil)
	assert.Error(t, err)
}

func TestEnsureValidRejectsOutOfRangeRescanInterval(t *testing.T) {
	cfg := Default()
	cfg.WatchFolders = []string{"/w"}
	cfg.RescanIntervalSecs = 5
	_, _, err := EnsureValid(cfg, "", nil)
	assert.Error(t, err)
}

func TestEnsureValidRejectsNewerSchemaVersion(t *testing.T) {
	cfg := Default()
	cfg.ConfigVersion = CurrentConfigVersion + 1
	_, _, err := EnsureValid(cfg, "", nil)
	assert.Error(t, err)
}

func TestEnsureValidDowngradesReplaceWhenTrashUnwritable(t *testing.T) {
	cfg := Default()
	cfg.WatchFolders = []string{"/w"}
	cfg.OutputPolicy = OutputPolicyReplace

	unwritable := func(path string) bool { return false }

	validated, warning, err := EnsureValid(cfg, "/trash", unwritable)
	require.NoError(t, err)
	assert.Equal(t, OutputPolicyCoexist, validated.OutputPolicy)
	assert.NotEmpty(t, warning)
}

func TestEnsureValidKeepsReplaceWhenEverythingWritable(t *testing.T) {
	cfg := Default()
	cfg.WatchFolders = []string{"/w"}
	cfg.OutputPolicy = OutputPolicyReplace

	writable := func(path string) bool { return true }

	validated, warning, err := EnsureValid(cfg, "/trash", writable)
	require.NoError(t, err)
	assert.Equal(t, OutputPolicyReplace, validated.OutputPolicy)
	assert.Empty(t, warning)
}

func TestEnsureValidSkipsDowngradeCheckWithoutWritableFunc(t *testing.T) {
	cfg := Default()
	cfg.WatchFolders = []string{"/w"}
	cfg.OutputPolicy = OutputPolicyReplace

	validated, warning, err := EnsureValid(cfg, "/trash", nil)
	require.NoError(t, err)
	assert.Equal(t, OutputPolicyReplace, validated.OutputPolicy)
	assert.Empty(t, warning)
}

func TestEnsureValidCoercesDefaultOutputPolicy(t *testing.T) {
	cfg := Default()
	cfg.WatchFolders = []string{"/w"}
	cfg.OutputPolicy = OutputPolicyDefault

	validated, _, err := EnsureValid(cfg, "", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultOutputPolicy, validated.OutputPolicy)
}

func TestEnsureValidDefaultsZeroConfigVersion(t *testing.T) {
	cfg := Default()
	cfg.ConfigVersion = 0
	cfg.WatchFolders = []string{"/w"}

	validated, _, err := EnsureValid(cfg, "", nil)
	require.NoError(t, err)
	assert.Equal(t, CurrentConfigVersion, validated.ConfigVersion)
}
