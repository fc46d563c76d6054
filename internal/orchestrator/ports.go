package orchestrator

import "context"

// Host is the set of runtime capabilities the orchestrator depends on.
// Sends are fire-and-forget: a nil error means the host accepted the
// message for delivery, not that the recipient processed it.
type Host interface {
	// Spawn materializes a child actor from a manifest locator and returns its id.
	Spawn(ctx context.Context, manifest string, init []byte) (string, error)
	// Send delivers bytes to another actor.
	Send(ctx context.Context, actorID string, data []byte) error
	// Log records a line attributed to the calling actor.
	Log(msg string)
	// RequestShutdown asks the host to tear down the calling actor.
	RequestShutdown(ctx context.Context, reason string) error
}

// ChannelAccept is the answer to a channel-open request.
type ChannelAccept struct {
	Accepted bool
	Message  []byte
}
