package protocol

import (
	"fmt"

	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// WorkerRequestType tags a message sent to the conversation-state worker.
type WorkerRequestType string

const (
	WorkerAddMessage         WorkerRequestType = "add_message"
	WorkerGenerateCompletion WorkerRequestType = "generate_completion"
)

// WorkerRequest is a message in the worker's own request shape.
type WorkerRequest struct {
	Type    WorkerRequestType `json:"type"`
	Message *models.Message   `json:"message,omitempty"`
}

// AppendMessage asks the worker to append a message to its history.
func AppendMessage(msg models.Message) WorkerRequest {
	return WorkerRequest{Type: WorkerAddMessage, Message: &msg}
}

// GenerateCompletion asks the worker to produce the next assistant turn.
func GenerateCompletion() WorkerRequest {
	return WorkerRequest{Type: WorkerGenerateCompletion}
}

// Encode serializes the worker request.
func (r WorkerRequest) Encode() ([]byte, error) {
	data, err := Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s request: %w", r.Type, err)
	}
	return data, nil
}

// DecodeWorkerRequest parses a worker request; used by hosts that inspect
// mailbox traffic.
func DecodeWorkerRequest(data []byte) (*WorkerRequest, error) {
	var req WorkerRequest
	if err := Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse worker request: %w", err)
	}
	switch req.Type {
	case WorkerAddMessage, WorkerGenerateCompletion:
		return &req, nil
	default:
		return nil, fmt.Errorf("failed to parse worker request: unknown type %q", req.Type)
	}
}
