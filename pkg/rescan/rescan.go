// Package rescan implements the periodic reconciliation sweep (spec.md
// §4.9, C11): a full walk of watched roots that enqueues any eligible
// source whose preferred JPEG output is missing, recovering from missed
// events, deleted outputs, and changes made while paused.
package rescan

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/heicready/heicready/pkg/classify"
	"github.com/heicready/heicready/pkg/config"
	"github.com/heicready/heicready/pkg/logging"
	"github.com/heicready/heicready/pkg/outputname"
	"github.com/heicready/heicready/pkg/queue"
)

// Ticker runs the rescan sweep once immediately and then on every tick of
// the configured interval, following the teacher's own periodic-
// housekeeping goroutine shape (see DESIGN.md): a cancellable context, a
// ticker loop, and an immediate first pass before waiting on the ticker.
type Ticker struct {
	cfg    config.Config
	queue  *queue.Queue
	logger *logging.Logger
}

// NewTicker creates a Ticker that will sweep the roots named in cfg.
func NewTicker(cfg config.Config, q *queue.Queue, logger *logging.Logger) *Ticker {
	return &Ticker{cfg: cfg, queue: q, logger: logger}
}

// Run sweeps immediately, then every cfg.RescanIntervalSecs, until ctx is
// canceled.
func (t *Ticker) Run(ctx context.Context) error {
	t.sweep()

	interval := time.Duration(t.cfg.RescanIntervalSecs) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *Ticker) sweep() {
	for _, root := range t.cfg.WatchFolders {
		if err := t.sweepRoot(root); err != nil {
			t.logger.Warnf("unable to rescan %q: %v", root, err)
		}
	}
}

func (t *Ticker) sweepRoot(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return nil // best-effort: skip unreadable entries rather than aborting the walk
		}
		if entry.IsDir() {
			if !t.cfg.RecursiveWatch && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !classify.IsEligible(path, t.cfg) {
			return nil
		}

		preferred, err := outputname.PreferredPath(path)
		if err != nil {
			return nil
		}
		if _, statErr := os.Stat(preferred); statErr == nil {
			return nil // output already exists; nothing to recover
		}

		t.queue.Enqueue(queue.Key(path), time.Now().UnixNano()/int64(time.Millisecond))
		return nil
	})
}
