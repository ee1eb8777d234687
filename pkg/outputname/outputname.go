// Package outputname implements the output-name resolver (spec.md §4.3):
// choosing a non-colliding ".jpg" target next to a HEIC/HEIF source.
package outputname

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// MaxProbe bounds how many numbered candidates are tried before giving up.
const MaxProbe = 9999

// ErrCollisionOverflow indicates that no free output name could be found
// within MaxProbe attempts.
var ErrCollisionOverflow = errors.New("collision overflow: no free output name found")

// PreferredPath returns "<base>.jpg" for sourcePath without probing for
// collisions, for callers (the rescan sweep) that only need to know
// whether the canonical output already exists.
func PreferredPath(sourcePath string) (string, error) {
	dir := filepath.Dir(sourcePath)
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	return filepath.Join(dir, base+".jpg"), nil
}

// Resolve returns the preferred ".jpg" path for sourcePath. If
// "<base>.jpg" already exists (as any kind of filesystem entry), numbered
// alternatives "<base> (1).jpg", "<base> (2).jpg", ... are tried in order
// until a name that does not exist is found. An existing file is never
// considered a candidate to overwrite, even if its content happens to match
// what would be produced.
func Resolve(sourcePath string) (string, error) {
	dir := filepath.Dir(sourcePath)
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))

	preferred := filepath.Join(dir, base+".jpg")
	if !exists(preferred) {
		return preferred, nil
	}

	for n := 1; n <= MaxProbe; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d).jpg", base, n))
		if !exists(candidate) {
			return candidate, nil
		}
	}

	return "", ErrCollisionOverflow
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
