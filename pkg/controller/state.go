package controller

// State is one of the controller lifecycle states named in spec.md §4.10.
type State string

const (
	// StateInitializing is the state before the first configuration has
	// been successfully applied.
	StateInitializing State = "initializing"
	// StateRunning indicates the controller is actively watching and
	// converting.
	StateRunning State = "running"
	// StatePaused indicates conversion work is suspended; watching and
	// rescanning continue. Jobs claimed while paused are logged as skipped
	// and dropped; after unpause their sources are queued again by the next
	// rescan sweep or a new filesystem event.
	StatePaused State = "paused"
	// StateReconfiguring indicates the controller is tearing down and
	// rebuilding its watcher and ticker in response to a configuration
	// change.
	StateReconfiguring State = "reconfiguring"
	// StateShuttingDown indicates the controller is draining in-flight
	// work before releasing resources.
	StateShuttingDown State = "shutting_down"
)
