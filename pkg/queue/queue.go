// Package queue implements the de-duplicating, ordered job queue (spec.md
// §4.6): at most one pending-or-in-flight entry per canonical source path,
// FIFO among distinct keys.
package queue

import (
	"context"
	"sync"
)

// Key is a canonicalized absolute source path; equality defines queue
// identity (spec.md §3's JobKey).
type Key string

// Job is a single pending unit of work.
type Job struct {
	Key        Key
	EnqueuedAt int64 // Unix milliseconds
	Attempts   int
}

// Queue is the thread-safe job queue described in spec.md §4.6. FIFO order
// is preserved among distinct keys; a key already pending or in flight is
// never duplicated.
type Queue struct {
	mu       sync.Mutex
	pending  []Job
	inFlight map[Key]bool
	notify   chan struct{}
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{
		inFlight: make(map[Key]bool),
		notify:   make(chan struct{}, 1),
	}
}

// wake signals any blocked Claim callers that the pending set may have
// changed, following the same buffered-channel wakeup idiom the teacher
// uses to forward filesystem events out of its watcher goroutine
// (watch_native_non_recursive_inotify.go).
func (q *Queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// containsPending reports whether key is already pending. Caller must hold q.mu.
func (q *Queue) containsPending(key Key) bool {
	for _, job := range q.pending {
		if job.Key == key {
			return true
		}
	}
	return false
}

// Enqueue appends key to the tail of the queue with attempts 0, unless it
// is already pending or currently in flight, in which case it is a no-op.
func (q *Queue) Enqueue(key Key, enqueuedAtUnixMS int64) {
	q.EnqueueWithAttempts(key, enqueuedAtUnixMS, 0)
}

// EnqueueWithAttempts is like Enqueue but lets a caller (a retrying worker)
// carry forward an attempts count. Retried jobs are appended at the tail,
// not the head, so a single unstable file cannot starve the rest of the
// queue (spec.md §4.6).
func (q *Queue) EnqueueWithAttempts(key Key, enqueuedAtUnixMS int64, attempts int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.inFlight[key] || q.containsPending(key) {
		return
	}

	q.pending = append(q.pending, Job{Key: key, EnqueuedAt: enqueuedAtUnixMS, Attempts: attempts})
	q.wake()
}

// Claim blocks until a job is available or ctx is canceled, then removes it
// from pending and marks its key in flight. Between Claim and Release, a
// re-enqueue of the same key is suppressed.
func (q *Queue) Claim(ctx context.Context) (Job, bool) {
	for {
		q.mu.Lock()
		if len(q.pending) > 0 {
			job := q.pending[0]
			q.pending = q.pending[1:]
			q.inFlight[job.Key] = true
			q.mu.Unlock()
			return job, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Job{}, false
		case <-q.notify:
		}
	}
}

// Release removes key from the in-flight set, allowing future re-enqueues
// of the same key to succeed.
func (q *Queue) Release(key Key) {
	q.mu.Lock()
	delete(q.inFlight, key)
	q.mu.Unlock()
}

// DrainPending returns and clears the remaining pending jobs without
// consuming in-flight work, for use at shutdown (spec.md §4.6).
func (q *Queue) DrainPending() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	drained := q.pending
	q.pending = nil
	return drained
}

// Len returns the number of currently pending jobs, for tests and metrics.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
