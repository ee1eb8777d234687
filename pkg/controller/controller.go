// Package controller implements the lifecycle controller (spec.md §4.10,
// C12): the component that owns the config store, job queue, worker pool,
// watch dispatcher, and rescan ticker, and mediates every reconfiguration,
// pause/resume, and shutdown.
//
// Directly modeled on the teacher's synchronization controller
// (pkg/synchronization/controller.go): a lifecycleLock guards a
// cancel/done pair for each piece of cancelable, restartable work, and
// "only the current holder of the lifecycle lock may set any of these
// fields or invoke cancel" (see DESIGN.md).
package controller

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/heicready/heicready/pkg/activity"
	"github.com/heicready/heicready/pkg/config"
	"github.com/heicready/heicready/pkg/convert"
	"github.com/heicready/heicready/pkg/logging"
	"github.com/heicready/heicready/pkg/queue"
	"github.com/heicready/heicready/pkg/rescan"
	"github.com/heicready/heicready/pkg/trash"
	"github.com/heicready/heicready/pkg/transcode"
	"github.com/heicready/heicready/pkg/watching"
)

// Controller owns the full watch-and-convert pipeline for one set of
// watched roots. A Controller's methods are safe for concurrent usage, so
// it can be easily exported via the command surface (pkg/commands).
type Controller struct {
	logger     *logging.Logger
	configPath string

	store       *config.Store
	activityLog *activity.Ring
	jobQueue    *queue.Queue
	transcoder  transcode.Transcoder
	trash       trash.Trash
	pool        *convert.Pool
	workers     int

	// stateLock guards state and the notification subscriber lists. It is
	// a separate, short-held lock from lifecycleLock: readers of State and
	// subscribers must never block behind a teardown/rebuild cycle.
	stateLock  sync.Mutex
	state      State
	pausedSubs []chan bool
	localeSubs []chan config.Locale

	// lifecycleLock guards watchCancel, watchDone, poolCancel, and poolDone.
	// Only the current holder of the lifecycle lock may set any of these
	// fields or invoke cancel. Previous holders may continue to wait on a
	// done channel after storing it in a separate variable and releasing
	// the lock.
	lifecycleLock sync.Mutex
	watchCancel   context.CancelFunc
	watchDone     chan struct{}
	poolCancel    context.CancelFunc
	poolDone      chan struct{}
}

// New creates a Controller in state Initializing. configPath, if non-empty,
// is where UpdateConfig and TogglePause persist the configuration;
// trashImpl, if nil, disables the replace output policy (the writability
// probe will always report false).
func New(configPath string, cfg config.Config, transcoder transcode.Transcoder, trashImpl trash.Trash, workers int, logger *logging.Logger) *Controller {
	return &Controller{
		logger:      logger,
		configPath:  configPath,
		store:       config.NewStore(cfg),
		activityLog: activity.NewRing(),
		jobQueue:    queue.New(),
		transcoder:  transcoder,
		trash:       trashImpl,
		workers:     workers,
		state:       StateInitializing,
	}
}

// Run starts the worker pool and watch pipeline and blocks until ctx is
// canceled, at which point it transitions to ShuttingDown: it stops
// accepting new watch events, lets the pool's in-flight workers finish
// their current job, then releases resources. Run returns nil after a
// shutdown, or the error from building the initial watcher if that fails.
func (c *Controller) Run(ctx context.Context) error {
	c.pool = convert.New(c.workers, c.jobQueue, c.store, c.transcoder, c.trash, c.activityLog, c.logger.Sublogger("convert"))

	poolCtx, poolCancel := context.WithCancel(context.Background())
	poolDone := make(chan struct{})
	c.lifecycleLock.Lock()
	c.poolCancel = poolCancel
	c.poolDone = poolDone
	c.lifecycleLock.Unlock()
	go func() {
		defer close(poolDone)
		c.pool.Run(poolCtx)
	}()

	if err := c.startWatching(); err != nil {
		poolCancel()
		<-poolDone
		return err
	}

	c.setState(stateForPaused(c.store.Get().Paused))

	<-ctx.Done()

	c.setState(StateShuttingDown)
	c.stopWatching()

	c.lifecycleLock.Lock()
	c.poolCancel()
	pd := c.poolDone
	c.lifecycleLock.Unlock()
	<-pd

	if remaining := c.jobQueue.DrainPending(); len(remaining) > 0 {
		c.logger.Infof("dropping %d pending job(s) at shutdown", len(remaining))
	}

	return nil
}

// startWatching builds a fresh dispatcher and ticker from the current
// configuration and runs them under a new cancelable lifecycle.
func (c *Controller) startWatching() error {
	cfg := c.store.Get()

	dispatcher, err := watching.NewDispatcher(cfg, c.jobQueue, c.logger.Sublogger("watching"))
	if err != nil {
		return err
	}
	ticker := rescan.NewTicker(cfg, c.jobQueue, c.logger.Sublogger("rescan"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	c.lifecycleLock.Lock()
	c.watchCancel = cancel
	c.watchDone = done
	c.lifecycleLock.Unlock()

	go func() {
		defer close(done)
		defer dispatcher.Terminate()
		group, gctx := errgroup.WithContext(ctx)
		group.Go(func() error { return dispatcher.Run(gctx) })
		group.Go(func() error { return ticker.Run(gctx) })
		group.Wait()
	}()

	return nil
}

// stopWatching cancels and waits for the current dispatcher/ticker pair to
// finish. It is a no-op if nothing is currently running.
func (c *Controller) stopWatching() {
	c.lifecycleLock.Lock()
	cancel := c.watchCancel
	done := c.watchDone
	c.lifecycleLock.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// GetConfig returns the current configuration snapshot.
func (c *Controller) GetConfig() config.Config {
	return c.store.Get()
}

// GetRecentLogs returns up to activity.Capacity entries, newest first.
func (c *Controller) GetRecentLogs() []activity.Entry {
	return c.activityLog.Recent()
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.state
}

// UpdateConfig validates and applies a new configuration, persisting it (if
// a configPath was given) and re-wiring the watcher and ticker if any
// watch-affecting field changed. It mirrors the update_config command in
// spec.md §6: it returns the (possibly downgraded) applied configuration
// and a non-empty warning if the replace output policy was downgraded.
func (c *Controller) UpdateConfig(newCfg config.Config) (config.Config, string, error) {
	old := c.store.Get()

	validated, warning, err := config.EnsureValid(newCfg, c.trashPath(), config.DefaultWritableCheck)
	if err != nil {
		return config.Config{}, "", err
	}

	if c.configPath != "" {
		if err := config.Save(c.configPath, validated); err != nil {
			return config.Config{}, "", err
		}
	}

	c.store.Set(validated)

	if watchAffecting(old, validated) {
		c.setState(StateReconfiguring)
		c.stopWatching()
		if err := c.startWatching(); err != nil {
			return config.Config{}, "", err
		}
	}

	if old.Paused != validated.Paused {
		c.notifyPaused(validated.Paused)
	}
	if old.Locale != validated.Locale {
		c.notifyLocale(validated.Locale)
	}

	c.setState(stateForPaused(validated.Paused))

	return validated, warning, nil
}

// TogglePause flips the paused flag and returns its new value, per the
// toggle_pause command in spec.md §6.
func (c *Controller) TogglePause() bool {
	cfg := c.store.Get()
	cfg.Paused = !cfg.Paused
	c.store.Set(cfg)

	if c.configPath != "" {
		if err := config.Save(c.configPath, cfg); err != nil {
			c.logger.Warnf("unable to persist paused state: %v", err)
		}
	}

	c.notifyPaused(cfg.Paused)
	c.setState(stateForPaused(cfg.Paused))

	return cfg.Paused
}

// SubscribePaused returns a channel that receives the new paused value
// every time it changes.
func (c *Controller) SubscribePaused() <-chan bool {
	ch := make(chan bool, 1)
	c.stateLock.Lock()
	c.pausedSubs = append(c.pausedSubs, ch)
	c.stateLock.Unlock()
	return ch
}

// SubscribeLocale returns a channel that receives the new locale every time
// it changes.
func (c *Controller) SubscribeLocale() <-chan config.Locale {
	ch := make(chan config.Locale, 1)
	c.stateLock.Lock()
	c.localeSubs = append(c.localeSubs, ch)
	c.stateLock.Unlock()
	return ch
}

func (c *Controller) notifyPaused(paused bool) {
	c.stateLock.Lock()
	subs := append([]chan bool(nil), c.pausedSubs...)
	c.stateLock.Unlock()
	for _, sub := range subs {
		select {
		case sub <- paused:
		default:
		}
	}
}

func (c *Controller) notifyLocale(locale config.Locale) {
	c.stateLock.Lock()
	subs := append([]chan config.Locale(nil), c.localeSubs...)
	c.stateLock.Unlock()
	for _, sub := range subs {
		select {
		case sub <- locale:
		default:
		}
	}
}

func (c *Controller) setState(s State) {
	c.stateLock.Lock()
	c.state = s
	c.stateLock.Unlock()
}

func (c *Controller) trashPath() string {
	if d, ok := c.trash.(*trash.Directory); ok {
		return d.Path()
	}
	return ""
}

func stateForPaused(paused bool) State {
	if paused {
		return StatePaused
	}
	return StateRunning
}

// watchAffecting reports whether any field that requires tearing down and
// rebuilding the watcher/ticker changed between old and next (spec.md
// §4.10: watch_folders, recursive_watch, rescan_interval_secs).
func watchAffecting(old, next config.Config) bool {
	if old.RecursiveWatch != next.RecursiveWatch {
		return true
	}
	if old.RescanIntervalSecs != next.RescanIntervalSecs {
		return true
	}
	if len(old.WatchFolders) != len(next.WatchFolders) {
		return true
	}
	for i, folder := range old.WatchFolders {
		if next.WatchFolders[i] != folder {
			return true
		}
	}
	return false
}
