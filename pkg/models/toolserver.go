package models

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrInvalidToolServer indicates a descriptor with zero or two backends.
var ErrInvalidToolServer = errors.New("tool server must have exactly one of stdio or actor")

// StdioServer launches a local process speaking MCP over stdin/stdout.
type StdioServer struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// ActorServer materializes an actor from a manifest and talks to it.
type ActorServer struct {
	// ManifestPath locates the actor manifest (file path or URL).
	ManifestPath string `json:"manifest_path"`
	// InitState is handed to the actor when it is spawned.
	InitState json.RawMessage `json:"init_state"`
}

// ToolServer describes one capability source the worker may call.
// Exactly one of Stdio or Actor is set.
type ToolServer struct {
	// ActorID is filled in by the worker once an actor-backed server runs.
	ActorID *string      `json:"actor_id"`
	Stdio   *StdioServer `json:"stdio,omitempty"`
	Actor   *ActorServer `json:"actor,omitempty"`
	// Tools optionally pins the tool definitions the server exposes.
	Tools []mcp.Tool `json:"tools"`
}

// Validate checks that exactly one backend is configured.
func (s ToolServer) Validate() error {
	if (s.Stdio == nil) == (s.Actor == nil) {
		return ErrInvalidToolServer
	}
	return nil
}

// NewActorServer returns an actor-backed descriptor.
func NewActorServer(manifestPath string, initState json.RawMessage) ToolServer {
	return ToolServer{
		Actor: &ActorServer{
			ManifestPath: manifestPath,
			InitState:    initState,
		},
	}
}
