// Package commands implements the five-command surface consumed by the
// tray shell (spec.md §6). It is deliberately transport-agnostic: a plain
// Go interface rather than a generated RPC service, so any front end (a
// native tray process, a CLI adjunct, a test) can drive the daemon without
// pulling in protobuf/gRPC codegen (see DESIGN.md for why that dependency
// was dropped rather than wired).
package commands

import (
	"github.com/heicready/heicready/pkg/activity"
	"github.com/heicready/heicready/pkg/config"
	"github.com/heicready/heicready/pkg/controller"
)

// UpdateConfigResult is the output of update_config: the (possibly
// downgraded) configuration that was actually applied, plus an optional
// human-readable warning describing any downgrade.
type UpdateConfigResult struct {
	Config  config.Config `json:"config"`
	Warning string        `json:"warning,omitempty"`
}

// Picker abstracts the UI-owned native folder picker. pick_watch_folder
// delegates to it and the core only accepts whatever result comes back,
// per spec.md §6 ("the core only accepts the result").
type Picker interface {
	// PickFolder returns an absolute path, or ok=false if the user
	// canceled the dialog.
	PickFolder() (path string, ok bool)
}

// Handler implements the five commands over a Controller. It carries no
// state of its own beyond the Controller and Picker it was built with, so
// it is cheap to construct per connection if a transport needs that.
type Handler struct {
	controller *controller.Controller
	picker     Picker
}

// New creates a Handler. picker may be nil; PickWatchFolder then always
// reports ok=false.
func New(c *controller.Controller, picker Picker) *Handler {
	return &Handler{controller: c, picker: picker}
}

// GetConfig implements get_config.
func (h *Handler) GetConfig() config.Config {
	return h.controller.GetConfig()
}

// UpdateConfig implements update_config.
func (h *Handler) UpdateConfig(next config.Config) (UpdateConfigResult, error) {
	applied, warning, err := h.controller.UpdateConfig(next)
	if err != nil {
		return UpdateConfigResult{}, err
	}
	return UpdateConfigResult{Config: applied, Warning: warning}, nil
}

// GetRecentLogs implements get_recent_logs: up to activity.Capacity
// entries, newest first.
func (h *Handler) GetRecentLogs() []activity.Entry {
	return h.controller.GetRecentLogs()
}

// TogglePause implements toggle_pause, returning the new paused value.
func (h *Handler) TogglePause() bool {
	return h.controller.TogglePause()
}

// PickWatchFolder implements pick_watch_folder: it delegates to the
// UI-owned picker and passes its result through unchanged.
func (h *Handler) PickWatchFolder() (string, bool) {
	if h.picker == nil {
		return "", false
	}
	return h.picker.PickFolder()
}

// Notifications carries the paused-changed and locale-changed notification
// channels named in spec.md §6. It has no logs-appended channel; new
// activity entries are read through GetRecentLogs. A transport wires these
// onto whatever wire format it emits to the UI; the
// core only guarantees that a value arrives on each subscribed channel
// when the corresponding state changes.
type Notifications struct {
	Paused <-chan bool
	Locale <-chan config.Locale
}

// Subscribe returns a Notifications bundle wired to the underlying
// Controller's paused and locale change channels.
func (h *Handler) Subscribe() Notifications {
	return Notifications{
		Paused: h.controller.SubscribePaused(),
		Locale: h.controller.SubscribeLocale(),
	}
}
