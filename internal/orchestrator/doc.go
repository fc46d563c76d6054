// Package orchestrator implements a task orchestrator actor that owns a single
// conversation-state worker.
//
// The orchestrator is driven entirely by its host. Every entry point receives
// the opaque state blob persisted by the host after the previous call and
// returns the state to persist next. The package provides:
//   - Creation: deriving the worker configuration and spawning the worker
//   - Dispatch: answering requests and forwarding messages to the worker
//   - Supervision: reacting to worker errors, exits and external stops
//
// The host is reached only through the Host interface, so the actor can be
// driven by a real runtime or by an in-memory fake in tests.
//
// Example usage:
//
//	actor := orchestrator.New(orchestrator.RequiredConfig{
//		Host:              host,
//		ChatStateManifest: manifest,
//	}, orchestrator.WithDeriver(deriver))
//	state, err := actor.Init(ctx, params, selfID)
package orchestrator
