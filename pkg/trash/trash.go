// Package trash implements the "move source to user trash" capability used
// by the atomic writer's replace output policy (spec.md §4.4), and the
// writability probe the worker pool consults before that move (an
// unavailable trash leads to a replace-skipped entry). The replace→coexist
// downgrade in config.EnsureValid probes the trash path through its own
// config.WritableCheck, not through this package.
//
// No pack example implements a desktop recycle-bin capability, so this is
// one of the few concerns built directly on the standard library rather
// than an ecosystem dependency (see DESIGN.md).
package trash

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Trash abstracts the move-to-trash operation so that tests can substitute
// a deterministic double, per the same design note spec.md §9 applies to
// the Transcoder.
type Trash interface {
	// Move moves the file at path into the trash, returning the path it was
	// moved to.
	Move(path string) (string, error)
	// Writable reports whether the trash is currently available for use.
	Writable() bool
}

// Directory implements Trash by moving files into a single directory,
// modeling the behavior of a desktop trash/recycle bin closely enough for
// this core's purposes: files are renamed into the directory with a
// timestamp suffix to avoid collisions, never deleted outright.
type Directory struct {
	path string
}

// NewDirectory creates a Directory-backed Trash rooted at path. The
// directory is not required to exist yet; Writable will create it on
// demand.
func NewDirectory(path string) *Directory {
	return &Directory{path: path}
}

// Path returns the trash root directory.
func (d *Directory) Path() string {
	return d.path
}

// Writable reports whether the trash directory exists (creating it if
// necessary) and accepts a probe file.
func (d *Directory) Writable() bool {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return false
	}
	probe, err := os.CreateTemp(d.path, ".heicready-writable-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}

// Move moves the file at path into the trash directory, disambiguating the
// name with a nanosecond timestamp if a file of the same name is already
// there.
func (d *Directory) Move(path string) (string, error) {
	if err := os.MkdirAll(d.path, 0o755); err != nil {
		return "", errors.Wrap(err, "unable to create trash directory")
	}

	target := filepath.Join(d.path, filepath.Base(path))
	if _, err := os.Lstat(target); err == nil {
		target = filepath.Join(d.path, fmt.Sprintf("%s.%d", filepath.Base(path), time.Now().UnixNano()))
	}

	if err := os.Rename(path, target); err != nil {
		return "", errors.Wrap(err, "unable to move file to trash")
	}

	return target, nil
}
