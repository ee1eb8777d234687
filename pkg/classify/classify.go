// Package classify implements the path-eligibility predicate (spec.md
// §4.1): deciding whether a given path is a HEIC/HEIF source that falls
// under a watched root according to the current configuration.
package classify

import (
	"path/filepath"
	"strings"

	"github.com/heicready/heicready/pkg/config"
)

// eligibleExtensions holds the case-folded, dot-less extensions this core
// treats as HEIC/HEIF containers.
var eligibleExtensions = map[string]bool{
	"heic": true,
	"heif": true,
}

// IsEligible reports whether path is an eligible HEIC/HEIF file under the
// watch folders named in cfg, per spec.md §4.1:
//   - path is absolute;
//   - its final extension (case-insensitive) is heic or heif;
//   - it lies under at least one watch folder;
//   - if recursive watching is disabled, its parent directory is exactly one
//     of the watch folders (not merely nested under one).
//
// Symlinks are not resolved; callers pass whatever path the OS notifier or
// rescan walk reports.
func IsEligible(path string, cfg config.Config) bool {
	if !filepath.IsAbs(path) {
		return false
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !eligibleExtensions[ext] {
		return false
	}

	cleaned := filepath.Clean(path)
	parent := filepath.Dir(cleaned)

	var underWatchRoot bool
	for _, root := range cfg.WatchFolders {
		if isUnderRoot(cleaned, root) {
			underWatchRoot = true
			break
		}
	}
	if !underWatchRoot {
		return false
	}

	if !cfg.RecursiveWatch {
		for _, root := range cfg.WatchFolders {
			if parent == root {
				return true
			}
		}
		return false
	}

	return true
}

// isUnderRoot reports whether path is nested under root. The root itself
// does not count.
func isUnderRoot(path, root string) bool {
	root = filepath.Clean(root)
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return false // path is the root itself, not a file under it
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
