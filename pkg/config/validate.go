package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// WritableCheck reports whether a directory path is currently writable. It
// is injected so validation can be tested without touching the real
// filesystem or a real trash implementation.
type WritableCheck func(path string) bool

// DefaultWritableCheck implements WritableCheck using a real filesystem
// probe: it attempts to create and remove a temporary file in the
// directory.
func DefaultWritableCheck(path string) bool {
	probe, err := os.CreateTemp(path, ".heicready-writable-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}

// EnsureValid validates c's invariants (spec.md §3). If policy is
// OutputPolicyReplace but the trash directory or any watch folder is not
// writable, the returned Config has OutputPolicy downgraded to
// OutputPolicyCoexist and warning is non-empty. Structural violations
// (non-absolute watch folders, out-of-range numeric fields, unsupported enum
// values) are returned as an error and no downgrade is attempted.
//
// trashPath is empty whenever no trash implementation is configured, which
// counts as trash being unavailable: it forces the downgrade rather than
// skipping the trash leg of the check. To skip the replace→coexist downgrade
// check entirely (used when validating endpoint-specific fragments that
// don't carry enough context to probe the filesystem), pass writable as
// nil; trashPath is ignored in that case.
func EnsureValid(c Config, trashPath string, writable WritableCheck) (Config, string, error) {
	if c.ConfigVersion > CurrentConfigVersion {
		return Config{}, "", errors.Errorf("configuration schema version %d is newer than supported version %d", c.ConfigVersion, CurrentConfigVersion)
	}

	for _, folder := range c.WatchFolders {
		if !filepath.IsAbs(folder) {
			return Config{}, "", errors.Errorf("watch folder %q is not an absolute path", folder)
		}
	}
	c.WatchFolders = normalizeWatchFolders(c.WatchFolders)

	if c.JPEGQuality < MinJPEGQuality || c.JPEGQuality > MaxJPEGQuality {
		return Config{}, "", errors.Errorf("jpeg_quality %d out of range [%d, %d]", c.JPEGQuality, MinJPEGQuality, MaxJPEGQuality)
	}

	if c.RescanIntervalSecs < MinRescanIntervalSecs || c.RescanIntervalSecs > MaxRescanIntervalSecs {
		return Config{}, "", errors.Errorf("rescan_interval_secs %d out of range [%d, %d]", c.RescanIntervalSecs, MinRescanIntervalSecs, MaxRescanIntervalSecs)
	}

	if c.OutputPolicy.IsDefault() {
		c.OutputPolicy = DefaultOutputPolicy
	}
	if !c.OutputPolicy.Supported() {
		return Config{}, "", errors.Errorf("unsupported output policy: %v", c.OutputPolicy)
	}

	if !c.Locale.Supported() {
		return Config{}, "", errors.Errorf("unsupported locale: %q", c.Locale)
	}

	var warning string
	if c.OutputPolicy == OutputPolicyReplace && writable != nil {
		unwritable := ""
		switch {
		case trashPath == "":
			unwritable = "the trash directory"
		case !writable(trashPath):
			unwritable = trashPath
		default:
			for _, folder := range c.WatchFolders {
				if !writable(folder) {
					unwritable = folder
					break
				}
			}
		}
		if unwritable != "" {
			c.OutputPolicy = OutputPolicyCoexist
			warning = "output policy downgraded from replace to coexist: " + unwritable + " is not writable"
		}
	}

	if c.ConfigVersion == 0 {
		c.ConfigVersion = CurrentConfigVersion
	}

	return c, warning, nil
}
