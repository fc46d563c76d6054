package orchestrator

import (
	"errors"
	"fmt"
)

var (
	// ErrNoState is returned when an entry point needs state but none was supplied.
	ErrNoState = errors.New("no state available")
	// ErrStateDecode wraps failures to parse a state blob.
	ErrStateDecode = errors.New("failed to deserialize orchestrator state")
	// ErrWorkerNotInitialized is returned when forwarding before the worker id is set.
	ErrWorkerNotInitialized = errors.New("chat state actor not initialized")
	// ErrSpawnFailed wraps a host spawn failure during creation.
	ErrSpawnFailed = errors.New("failed to spawn chat state actor")
)

// ErrorKind classifies a child error reported by the host.
type ErrorKind string

const (
	ErrorKindShuttingDown     ErrorKind = "shutting-down"
	ErrorKindTimeout          ErrorKind = "operation-timeout"
	ErrorKindChannelClosed    ErrorKind = "channel-closed"
	ErrorKindNotSupported     ErrorKind = "not-supported"
	ErrorKindFunctionNotFound ErrorKind = "function-not-found"
	ErrorKindTypeMismatch     ErrorKind = "type-mismatch"
	// ErrorKindInternal payloads are encoded chain events.
	ErrorKindInternal      ErrorKind = "internal"
	ErrorKindSerialization ErrorKind = "serialization-error"
)

// ChildError is a child failure as reported by the host.
type ChildError struct {
	Kind    ErrorKind
	Payload []byte
}

// WorkerError is the fatal error raised when the supervised worker fails.
type WorkerError struct {
	ChildID string
	Kind    ErrorKind
	Message string
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("chat state actor %s failed (%s): %s", e.ChildID, e.Kind, e.Message)
}
