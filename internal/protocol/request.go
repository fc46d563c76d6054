package protocol

import (
	"errors"
	"fmt"

	"github.com/ShayCichocki/taskmgr/pkg/models"
)

var (
	// ErrUnknownRequest indicates a request whose tag is not recognized.
	ErrUnknownRequest = errors.New("unknown request type")
	// ErrMissingMessage indicates an add-message request without a message.
	ErrMissingMessage = errors.New("add-message request has no message")
)

// RequestType tags an inbound request.
type RequestType string

const (
	RequestQueryWorkerID RequestType = "query-worker-id"
	RequestAddMessage    RequestType = "add-message"
	RequestStartSession  RequestType = "start-session"
)

// legacyRequestTypes maps the tag names used by earlier clients.
var legacyRequestTypes = map[RequestType]RequestType{
	"GetChatStateActorId": RequestQueryWorkerID,
	"AddMessage":          RequestAddMessage,
	"StartChat":           RequestStartSession,
}

// Request is a decoded request addressed to the orchestrator.
type Request struct {
	Type    RequestType     `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}

// QueryWorkerID builds a query-worker-id request.
func QueryWorkerID() Request {
	return Request{Type: RequestQueryWorkerID}
}

// AddMessage builds an add-message request.
func AddMessage(msg models.Message) Request {
	return Request{Type: RequestAddMessage, Message: &msg}
}

// StartSession builds a start-session request.
func StartSession() Request {
	return Request{Type: RequestStartSession}
}

// DecodeRequest parses request bytes. Legacy tags are normalized.
func DecodeRequest(data []byte) (*Request, error) {
	var req Request
	if err := Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}

	if canonical, ok := legacyRequestTypes[req.Type]; ok {
		req.Type = canonical
	}

	switch req.Type {
	case RequestQueryWorkerID, RequestStartSession:
		return &req, nil
	case RequestAddMessage:
		if req.Message == nil {
			return nil, fmt.Errorf("failed to parse request: %w", ErrMissingMessage)
		}
		return &req, nil
	default:
		return nil, fmt.Errorf("failed to parse request: %w: %q", ErrUnknownRequest, req.Type)
	}
}

// Encode serializes the request.
func (r Request) Encode() ([]byte, error) {
	return Marshal(r)
}
