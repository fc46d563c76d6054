package orchestrator

import "github.com/ShayCichocki/taskmgr/internal/taskconfig"

// RequiredConfig contains the minimal required configuration for an Actor.
// All fields are required and have no defaults.
type RequiredConfig struct {
	// Host provides spawn, send, log and shutdown.
	Host Host
	// ChatStateManifest locates the conversation-state worker.
	ChatStateManifest string
}

// Option configures an Actor. Use With* functions to create Options.
type Option func(*actorOptions)

type actorOptions struct {
	deriver *taskconfig.Deriver
}

// WithDeriver sets the configuration deriver. Defaults to the built-in
// profiles with default settings.
func WithDeriver(d *taskconfig.Deriver) Option {
	return func(o *actorOptions) { o.deriver = d }
}
