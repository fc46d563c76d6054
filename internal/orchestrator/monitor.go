package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
)

// Phase is the supervision phase of the worker. Only uninitialized and
// running are ever observable from persisted state; the terminal phases
// end the orchestrator and are never written back.
type Phase string

const (
	PhaseUninitialized     Phase = "uninitialized"
	PhaseRunning           Phase = "running"
	PhaseErrored           Phase = "errored"
	PhaseExited            Phase = "exited"
	PhaseExternallyStopped Phase = "externally_stopped"
)

// PhaseOf derives the phase recorded by a state.
func PhaseOf(s *State) Phase {
	if s == nil || s.WorkerID == nil {
		return PhaseUninitialized
	}
	return PhaseRunning
}

// ByteList is a byte string encoded as a JSON array of numbers. A JSON
// string is also accepted on decode.
type ByteList []byte

// MarshalJSON writes the bytes as an array of numbers.
func (b ByteList) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	nums := make([]int, len(b))
	for i, c := range b {
		nums[i] = int(c)
	}
	return protocol.Marshal(nums)
}

// UnmarshalJSON reads an array of values in 0..255 or a string.
func (b *ByteList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := protocol.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = append(ByteList{}, s...)
		return nil
	}

	var nums []int
	if err := protocol.Unmarshal(data, &nums); err != nil {
		return err
	}
	out := make(ByteList, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("byte value %d out of range", n)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// ChainEvent is a hashed, parent-linked record attached to internal child
// errors.
type ChainEvent struct {
	Hash        ByteList `json:"hash"`
	ParentHash  ByteList `json:"parent_hash"`
	EventType   string   `json:"event_type"`
	Data        ByteList `json:"data"`
	Timestamp   uint64   `json:"timestamp"`
	Description *string  `json:"description"`
}

// Monitor reacts to lifecycle notifications about the supervised worker.
type Monitor struct {
	host Host
}

// NewMonitor creates a Monitor.
func NewMonitor(host Host) *Monitor {
	return &Monitor{host: host}
}

// ChildError handles a child failure. It always fails: worker errors are
// never absorbed.
func (m *Monitor) ChildError(ctx context.Context, state []byte, childID string, cerr ChildError) ([]byte, error) {
	msg := errorText(cerr)
	m.host.Log(fmt.Sprintf("Child actor error: %s (%s): %s", childID, cerr.Kind, msg))
	return nil, &WorkerError{ChildID: childID, Kind: cerr.Kind, Message: msg}
}

// ChildExit handles a child exit. When the exited child is the supervised
// worker the orchestrator requests its own shutdown. State is returned
// unchanged, or nil when it cannot be decoded.
func (m *Monitor) ChildExit(ctx context.Context, state []byte, childID string, exitData []byte) []byte {
	m.host.Log(fmt.Sprintf("Child actor exited: %s", childID))

	st, err := DecodeState(state)
	if err != nil {
		m.host.Log(fmt.Sprintf("Discarding state on child exit: %v", err))
		return nil
	}

	if workerID, err := st.Worker(); err == nil && workerID == childID {
		m.host.Log("Chat state actor exited, shutting down")
		if err := m.host.RequestShutdown(ctx, "chat state actor exited"); err != nil {
			m.host.Log(fmt.Sprintf("Failed to request shutdown: %v", err))
		}
	}
	return state
}

// ChildExternalStop records that something outside the supervision
// relationship stopped a child. There is no cascading shutdown.
func (m *Monitor) ChildExternalStop(ctx context.Context, state []byte, childID string) []byte {
	m.host.Log(fmt.Sprintf("Child actor externally stopped: %s", childID))
	return state
}

// errorText extracts the human-readable part of a child error payload.
func errorText(cerr ChildError) string {
	if len(cerr.Payload) == 0 {
		return "no error details"
	}
	if cerr.Kind == ErrorKindInternal {
		var ev ChainEvent
		if err := protocol.Unmarshal(cerr.Payload, &ev); err == nil && ev.Data != nil {
			return strings.ToValidUTF8(string(ev.Data), "�")
		}
	}
	return strings.ToValidUTF8(string(cerr.Payload), "�")
}
