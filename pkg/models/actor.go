package models

import "time"

// ActorKind distinguishes the actors hosted by the local runtime.
type ActorKind string

const (
	// ActorKindOrchestrator is a task orchestrator.
	ActorKindOrchestrator ActorKind = "orchestrator"
	// ActorKindWorker is a supervised conversation-state worker.
	ActorKindWorker ActorKind = "worker"
)

// ActorStatus represents the current state of a hosted actor.
type ActorStatus string

const (
	// ActorStatusRunning indicates the actor accepts entry point calls.
	ActorStatusRunning ActorStatus = "running"
	// ActorStatusShutdownRequested indicates the actor asked to be torn down.
	ActorStatusShutdownRequested ActorStatus = "shutdown_requested"
	// ActorStatusExited indicates the actor exited on its own.
	ActorStatusExited ActorStatus = "exited"
	// ActorStatusStopped indicates an operator stopped the actor.
	ActorStatusStopped ActorStatus = "stopped"
	// ActorStatusFailed indicates an entry point returned a fatal error.
	ActorStatusFailed ActorStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s ActorStatus) Valid() bool {
	switch s {
	case ActorStatusRunning, ActorStatusShutdownRequested, ActorStatusExited,
		ActorStatusStopped, ActorStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true if the actor no longer accepts calls.
func (s ActorStatus) Terminal() bool {
	return s != ActorStatusRunning
}

// Actor is a record of an actor hosted by the local runtime.
type Actor struct {
	// ID is the unique identifier for this actor.
	ID string `json:"id"`
	// Kind is the role the actor plays.
	Kind ActorKind `json:"kind"`
	// ParentID is the supervising actor, empty for top-level actors.
	ParentID string `json:"parent_id,omitempty"`
	// Manifest is the locator the actor was spawned from.
	Manifest string `json:"manifest"`
	// Status is the current state of the actor.
	Status ActorStatus `json:"status"`
	// State is the opaque state blob persisted between calls.
	State []byte `json:"-"`
	// Reason records why the actor left the running state.
	Reason string `json:"reason,omitempty"`
	// CreatedAt is when the actor was spawned.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the actor record last changed.
	UpdatedAt time.Time `json:"updated_at"`
}
