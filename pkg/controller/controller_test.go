// These integration tests exercise the full watch-and-convert pipeline
// (dispatcher, ticker, worker pool, controller) against a real temporary
// directory tree and a MemoryTranscoder, mirroring five of the six seed
// scenarios in spec.md §8 (the stabilization scenario is covered at the
// unit level in pkg/stabilize) and, in spirit, the end-to-end fixture style of the
// pack's own worker-integration tests (see DESIGN.md).
package controller

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heicready/heicready/pkg/activity"
	"github.com/heicready/heicready/pkg/config"
	"github.com/heicready/heicready/pkg/logging"
	"github.com/heicready/heicready/pkg/trash"
	"github.com/heicready/heicready/pkg/transcode"
)

func startController(t *testing.T, cfg config.Config, tr trash.Trash) (*Controller, *transcode.MemoryTranscoder, func()) {
	t.Helper()
	transcoder := transcode.NewMemoryTranscoder()
	ctrl := New("", cfg, transcoder, tr, 2, logging.RootLogger.Sublogger("test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ctrl.Run(ctx)
		close(done)
	}()

	// Give the dispatcher and pool a moment to register their watches
	// before the test starts dropping files.
	time.Sleep(50 * time.Millisecond)

	return ctrl, transcoder, func() {
		cancel()
		<-done
	}
}

func waitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

// Scenario 1: coexist basic.
func TestScenarioCoexistBasic(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.WatchFolders = []string{root}
	cfg.OutputPolicy = config.OutputPolicyCoexist

	ctrl, _, stop := startController(t, cfg, nil)
	defer stop()

	source := filepath.Join(root, "A.heic")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))

	waitFor(t, 2*time.Second, func() bool { return len(ctrl.GetRecentLogs()) > 0 })

	_, err := os.Stat(filepath.Join(root, "A.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(source)
	assert.NoError(t, err, "source must remain under coexist")

	logs := ctrl.GetRecentLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, activity.ResultSuccess, logs[0].Result)
}

// Scenario 2: replace + trash.
func TestScenarioReplaceAndTrash(t *testing.T) {
	root := t.TempDir()
	trashDir := t.TempDir()
	cfg := config.Default()
	cfg.WatchFolders = []string{root}
	cfg.OutputPolicy = config.OutputPolicyReplace

	ctrl, _, stop := startController(t, cfg, trash.NewDirectory(trashDir))
	defer stop()

	source := filepath.Join(root, "B.heic")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))

	waitFor(t, 2*time.Second, func() bool { return len(ctrl.GetRecentLogs()) > 0 })

	_, err := os.Stat(filepath.Join(root, "B.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(source)
	assert.True(t, os.IsNotExist(err), "source must be moved out of the watch folder")

	logs := ctrl.GetRecentLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, activity.ResultSuccess, logs[0].Result)
}

// Scenario 4: rescan recovery — a deleted output is regenerated on the
// next sweep rather than requiring a new filesystem event.
func TestScenarioRescanRecovery(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.WatchFolders = []string{root}
	cfg.RescanIntervalSecs = config.MinRescanIntervalSecs

	ctrl, _, stop := startController(t, cfg, nil)
	defer stop()

	source := filepath.Join(root, "C.heic")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))
	waitFor(t, 2*time.Second, func() bool { return len(ctrl.GetRecentLogs()) >= 1 })

	require.NoError(t, os.Remove(filepath.Join(root, "C.jpg")))

	waitFor(t, time.Duration(config.MinRescanIntervalSecs+5)*time.Second, func() bool {
		_, err := os.Stat(filepath.Join(root, "C.jpg"))
		return err == nil
	})
}

// Scenario 5: pause/unpause.
func TestScenarioPauseThenUnpause(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.WatchFolders = []string{root}
	cfg.Paused = true
	cfg.RescanIntervalSecs = config.MinRescanIntervalSecs

	ctrl, _, stop := startController(t, cfg, nil)
	defer stop()

	source := filepath.Join(root, "D.heic")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))

	waitFor(t, 2*time.Second, func() bool { return len(ctrl.GetRecentLogs()) > 0 })
	logs := ctrl.GetRecentLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, activity.ResultSkip, logs[0].Result)
	assert.Equal(t, activity.ReasonPaused, logs[0].Reason)

	_, err := os.Stat(filepath.Join(root, "D.jpg"))
	assert.True(t, os.IsNotExist(err))

	paused := ctrl.TogglePause()
	assert.False(t, paused)

	waitFor(t, time.Duration(config.MinRescanIntervalSecs+5)*time.Second, func() bool {
		_, err := os.Stat(filepath.Join(root, "D.jpg"))
		return err == nil
	})
}

// Scenario 6: collision.
func TestScenarioCollision(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "E.jpg"), []byte("existing"), 0o644))

	cfg := config.Default()
	cfg.WatchFolders = []string{root}

	ctrl, _, stop := startController(t, cfg, nil)
	defer stop()

	source := filepath.Join(root, "E.heic")
	require.NoError(t, os.WriteFile(source, []byte("data"), 0o644))

	waitFor(t, 2*time.Second, func() bool { return len(ctrl.GetRecentLogs()) > 0 })

	existing, err := os.ReadFile(filepath.Join(root, "E.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(existing))

	_, err = os.Stat(filepath.Join(root, "E (1).jpg"))
	assert.NoError(t, err)

	logs := ctrl.GetRecentLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, filepath.Join(root, "E (1).jpg"), logs[0].OutputPath)
}

func TestUpdateConfigDowngradesReplaceWhenTrashUnwritable(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.WatchFolders = []string{root}

	ctrl, _, stop := startController(t, cfg, nil)
	defer stop()

	next := ctrl.GetConfig()
	next.OutputPolicy = config.OutputPolicyReplace

	applied, warning, err := ctrl.UpdateConfig(next)
	require.NoError(t, err)
	assert.Equal(t, config.OutputPolicyCoexist, applied.OutputPolicy)
	assert.NotEmpty(t, warning)
}

func TestStateTransitionsThroughLifecycle(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.WatchFolders = []string{root}

	ctrl, _, stop := startController(t, cfg, nil)

	waitFor(t, time.Second, func() bool { return ctrl.State() == StateRunning })

	stop()
	assert.Equal(t, StateShuttingDown, ctrl.State())
}
