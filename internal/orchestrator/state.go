package orchestrator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// State is the orchestrator's persistent identity, round-tripped through
// the host between calls.
type State struct {
	// ActorID is the orchestrator's own id.
	ActorID string `json:"actor_id"`
	// WorkerID is the conversation-state worker's id. It is set once during
	// creation and never cleared.
	WorkerID *string `json:"chat_state_actor_id"`
	// OriginalConfig is the encoded configuration document the worker was
	// spawned with, kept verbatim.
	OriginalConfig json.RawMessage `json:"original_config"`
	// InitialMessage is sent on start-session when present.
	InitialMessage *string `json:"initial_message"`

	Task      models.TaskName   `json:"task,omitempty"`
	Directory string            `json:"directory,omitempty"`
	Policy    taskconfig.Policy `json:"policy"`
}

// NewState creates the state for a freshly created orchestrator. Surrounding
// whitespace is trimmed from config; its interior is kept byte-for-byte.
func NewState(actorID string, config []byte, plan *taskconfig.Plan) *State {
	s := &State{
		ActorID:        actorID,
		OriginalConfig: json.RawMessage(bytes.TrimSpace(config)),
	}
	if plan != nil {
		s.InitialMessage = plan.InitialMessage
		s.Task = plan.Profile.Task
		s.Directory = plan.Profile.Directory
		s.Policy = plan.Policy
	}
	return s
}

// Worker returns the worker id or ErrWorkerNotInitialized.
func (s *State) Worker() (string, error) {
	if s.WorkerID == nil || *s.WorkerID == "" {
		return "", ErrWorkerNotInitialized
	}
	return *s.WorkerID, nil
}

// SetWorker records the worker id. It fails if a different id is already set.
func (s *State) SetWorker(id string) error {
	if id == "" {
		return errors.New("empty worker id")
	}
	if s.WorkerID != nil && *s.WorkerID != id {
		return fmt.Errorf("worker id already set to %s", *s.WorkerID)
	}
	s.WorkerID = &id
	return nil
}

func (s *State) validate() error {
	if s.ActorID == "" {
		return errors.New("missing actor_id")
	}
	if len(bytes.TrimSpace(s.OriginalConfig)) == 0 {
		return errors.New("missing original_config")
	}
	return nil
}

// EncodeState serializes a state. Keys are written in a fixed order so equal
// states encode to equal bytes.
func EncodeState(s *State) ([]byte, error) {
	if s == nil {
		return nil, ErrNoState
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid orchestrator state: %w", err)
	}
	data, err := protocol.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize orchestrator state: %w", err)
	}
	return data, nil
}

// DecodeState parses a state blob. It never panics; empty input yields
// ErrNoState and anything else unusable wraps ErrStateDecode.
func DecodeState(data []byte) (s *State, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoState
	}
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("%w: %v", ErrStateDecode, r)
		}
	}()

	var st State
	if err := protocol.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateDecode, err)
	}
	if err := st.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateDecode, err)
	}
	return &st, nil
}
