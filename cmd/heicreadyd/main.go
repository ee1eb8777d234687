// Command heicreadyd is the watch-and-convert daemon described by
// spec.md: it loads configuration, wires the controller, and runs until a
// termination signal arrives. It has no network surface of its own; the
// command handler (pkg/commands) is meant to be embedded directly into
// whatever process hosts the tray shell, the same way the reference
// daemon separates its service logic from its transport (see DESIGN.md).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heicready/heicready/pkg/config"
	"github.com/heicready/heicready/pkg/controller"
	"github.com/heicready/heicready/pkg/logging"
	"github.com/heicready/heicready/pkg/transcode"
	"github.com/heicready/heicready/pkg/trash"
)

// terminationSignals are the signals that ask heicreadyd to shut down
// cleanly.
var terminationSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}

var runConfiguration struct {
	configPath string
	workers    int
	logLevel   string
}

func runMain(_ *cobra.Command, _ []string) error {
	logger := logging.RootLogger

	if level, ok := logging.NameToLevel(runConfiguration.logLevel); ok {
		logging.SetLevel(level)
	} else {
		logger.Warnf("unrecognized log level %q, leaving verbosity at default", runConfiguration.logLevel)
	}

	configPath := runConfiguration.configPath
	if configPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("unable to locate user config directory: %w", err)
		}
		configPath = filepath.Join(dir, "heic-ready", "config.json")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}

	trashDir, err := defaultTrashDirectory()
	if err != nil {
		logger.Warnf("unable to locate trash directory, replace policy will downgrade to coexist: %v", err)
	}
	var trashImpl trash.Trash
	if trashDir != "" {
		trashImpl = trash.NewDirectory(trashDir)
	}

	validated, warning, err := config.EnsureValid(cfg, trashDir, config.DefaultWritableCheck)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if warning != "" {
		logger.Warnf("%s", warning)
	}
	if err := config.Save(configPath, validated); err != nil {
		logger.Warnf("unable to persist normalized configuration: %v", err)
	}

	transcoder := transcode.NewSIPSTranscoder(logger.Sublogger("transcode"))

	ctrl := controller.New(configPath, validated, transcoder, trashImpl, runConfiguration.workers, logger.Sublogger("controller"))

	terminationChan := make(chan os.Signal, 1)
	signal.Notify(terminationChan, terminationSignals...)

	runCtx, cancel := context.WithCancel(context.Background())
	runErrors := make(chan error, 1)
	go func() {
		runErrors <- ctrl.Run(runCtx)
	}()

	select {
	case s := <-terminationChan:
		logger.Infof("received termination signal: %v", s)
		cancel()
		<-runErrors
	case err := <-runErrors:
		cancel()
		if err != nil {
			return fmt.Errorf("controller terminated abnormally: %w", err)
		}
	}

	return nil
}

// defaultTrashDirectory reports the directory heicreadyd moves replaced
// sources into. There is no portable "system trash" API in the standard
// library, so (matching spec.md's scope, which treats the trash
// destination as host-provided) this is a dedicated subdirectory of the
// user's cache directory rather than the platform's visible Trash/Recycle
// Bin.
func defaultTrashDirectory() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "heic-ready", "trash"), nil
}

var rootCommand = &cobra.Command{
	Use:          "heicreadyd",
	Short:        "Run the heic-ready watch-and-convert daemon",
	Args:         cobra.NoArgs,
	RunE:         runMain,
	SilenceUsage: true,
}

func init() {
	flags := rootCommand.Flags()
	flags.SortFlags = false
	flags.StringVar(&runConfiguration.configPath, "config", "", "path to config.json (default: <user config dir>/heic-ready/config.json)")
	flags.IntVar(&runConfiguration.workers, "workers", 0, "worker pool size (default: convert.DefaultWorkerCount)")
	flags.StringVar(&runConfiguration.logLevel, "log-level", "info", "log verbosity: disabled, error, warn, info, or debug")
}

func main() {
	if err := rootCommand.Execute(); err != nil {
		os.Exit(1)
	}
}
