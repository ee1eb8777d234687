// Package heicready holds small process-wide globals shared across the
// watch-and-convert core.
package heicready

import (
	"os"
)

// DebugEnabled controls whether or not debug-level logging is enabled. It is
// set automatically based on the HEICREADY_DEBUG environment variable.
var DebugEnabled bool

func init() {
	DebugEnabled = os.Getenv("HEICREADY_DEBUG") == "1"
}
