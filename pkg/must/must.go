// Package must provides best-effort cleanup helpers for defer sites where an
// error can only be logged, never meaningfully propagated (e.g. closing a
// file after an earlier error has already determined the function's result).
package must

import (
	"io"
	"os"

	"github.com/heicready/heicready/pkg/logging"
)

// Close closes c, logging (rather than returning) any error.
func Close(c io.Closer, logger *logging.Logger) {
	if err := c.Close(); err != nil {
		logger.Warnf("unable to close: %v", err)
	}
}

// Remove removes the file at path, logging (rather than returning) any
// error. Removal of a file that no longer exists is not treated as an
// error worth logging.
func Remove(path string, logger *logging.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("unable to remove %q: %v", path, err)
	}
}
