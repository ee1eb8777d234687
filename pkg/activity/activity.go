// Package activity implements the bounded activity log the core surfaces to
// UI collaborators: a fixed-capacity ring retaining only the most recent
// conversions, successes, skips, and failures.
package activity

import (
	"sync"

	"github.com/google/uuid"
)

// Result classifies the outcome of a single log entry.
type Result string

const (
	// ResultSuccess indicates a completed conversion.
	ResultSuccess Result = "success"
	// ResultFailure indicates a conversion that could not complete.
	ResultFailure Result = "failure"
	// ResultSkip indicates a job that was deliberately not converted.
	ResultSkip Result = "skip"
	// ResultInfo indicates an informational entry with no bearing on job
	// outcome accounting.
	ResultInfo Result = "info"
)

// Reason enumerates the machine-readable reason codes a LogEntry carries,
// grounded on the error kinds in spec.md §7.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonUnstable           Reason = "unstable"
	ReasonNotFound           Reason = "not-found"
	ReasonIneligible         Reason = "ineligible"
	ReasonPaused             Reason = "paused"
	ReasonCollisionOverflow  Reason = "collision-overflow"
	ReasonDecodeFailed       Reason = "decode-failed"
	ReasonEncodeFailed       Reason = "encode-failed"
	ReasonMetadataReadFailed Reason = "metadata-read-failed"
	ReasonReplaceSkipped     Reason = "replace-skipped"
)

// Entry is a single activity record. It supplements spec.md §3's LogEntry
// shape with an ID (for UI list-diffing) and a duration (for success
// entries), neither of which changes its meaning.
type Entry struct {
	ID             string `json:"id"`
	Result         Result `json:"result"`
	TimestampUnixMS int64  `json:"timestamp_unix_ms"`
	SourcePath     string `json:"source_path"`
	OutputPath     string `json:"output_path,omitempty"`
	Reason         Reason `json:"reason,omitempty"`
	DurationMS     int64  `json:"duration_ms,omitempty"`
	BytesWritten   int64  `json:"bytes_written,omitempty"`
}

// Capacity is the maximum number of entries the ring retains.
const Capacity = 10

// Ring is a thread-safe, fixed-capacity, newest-first activity log.
type Ring struct {
	mu      sync.Mutex
	entries []Entry // entries[0] is newest
	subs    []chan Entry
}

// NewRing creates an empty ring.
func NewRing() *Ring {
	return &Ring{entries: make([]Entry, 0, Capacity)}
}

// Append records a new entry, assigning it an ID and dropping the oldest
// entry if the ring is at capacity. It notifies any active subscribers.
func (r *Ring) Append(e Entry) Entry {
	e.ID = uuid.NewString()

	r.mu.Lock()
	r.entries = append([]Entry{e}, r.entries...)
	if len(r.entries) > Capacity {
		r.entries = r.entries[:Capacity]
	}
	subs := append([]chan Entry(nil), r.subs...)
	r.mu.Unlock()

	for _, sub := range subs {
		select {
		case sub <- e:
		default:
		}
	}

	return e
}

// Recent returns up to Capacity entries, newest first.
func (r *Ring) Recent() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Entry, len(r.entries))
	copy(result, r.entries)
	return result
}

// Subscribe returns a channel that receives each newly appended entry. The
// channel is buffered with room for one pending notification; slow
// consumers miss intermediate entries rather than blocking Append (the
// same trade-off the controller makes for its paused and locale
// notifications — it is a best-effort UI hint, and Recent remains the
// source of truth).
func (r *Ring) Subscribe() <-chan Entry {
	ch := make(chan Entry, 1)
	r.mu.Lock()
	r.subs = append(r.subs, ch)
	r.mu.Unlock()
	return ch
}
