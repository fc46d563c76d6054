package protocol

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrUnknownDirectMessage indicates a one-way message of an unrecognized shape.
var ErrUnknownDirectMessage = errors.New("unrecognized direct message")

// DirectMessageType tags a one-way notification sent to the orchestrator.
type DirectMessageType string

// DirectTaskComplete is sent by the task-monitor tool when the worker signals
// that its assigned task is finished.
const DirectTaskComplete DirectMessageType = "task_complete"

// DirectMessage is a one-way notification.
type DirectMessage struct {
	Type    DirectMessageType `json:"type"`
	Summary string            `json:"summary,omitempty"`
}

// TaskComplete builds a completion signal.
func TaskComplete(summary string) DirectMessage {
	return DirectMessage{Type: DirectTaskComplete, Summary: summary}
}

// Encode serializes the direct message.
func (m DirectMessage) Encode() ([]byte, error) {
	return Marshal(m)
}

// DecodeDirectMessage parses a one-way notification. The bare forms `null`
// and `"TaskComplete"` emitted by older task-monitor tools are accepted as
// completion signals.
func DecodeDirectMessage(data []byte) (*DirectMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte(`"TaskComplete"`)) {
		return &DirectMessage{Type: DirectTaskComplete}, nil
	}

	var msg DirectMessage
	if err := Unmarshal(trimmed, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownDirectMessage, err)
	}
	if msg.Type != DirectTaskComplete {
		return nil, fmt.Errorf("%w: type %q", ErrUnknownDirectMessage, msg.Type)
	}
	return &msg, nil
}
