package protocol

import "fmt"

// ResponseType tags a reply to a Request.
type ResponseType string

const (
	ResponseWorkerID ResponseType = "worker-id"
	ResponseSuccess  ResponseType = "success"
	ResponseError    ResponseType = "error"
)

// fallbackError is returned if a response cannot be encoded at all.
var fallbackError = []byte(`{"type":"error","message":"failed to encode response"}`)

// Response is a reply to an inbound request.
type Response struct {
	Type    ResponseType `json:"type"`
	ActorID string       `json:"actor_id,omitempty"`
	Message string       `json:"message,omitempty"`
}

// WorkerID reports the supervised worker's id.
func WorkerID(actorID string) Response {
	return Response{Type: ResponseWorkerID, ActorID: actorID}
}

// Success reports that the request was carried out.
func Success() Response {
	return Response{Type: ResponseSuccess}
}

// Error reports a failure with a human-readable message.
func Error(message string) Response {
	return Response{Type: ResponseError, Message: message}
}

// Errorf is Error with formatting.
func Errorf(format string, args ...any) Response {
	return Error(fmt.Sprintf(format, args...))
}

// IsError reports whether the response is an error.
func (r Response) IsError() bool {
	return r.Type == ResponseError
}

// Encode serializes the response. It never fails.
func (r Response) Encode() []byte {
	data, err := Marshal(r)
	if err != nil {
		return fallbackError
	}
	return data
}

// DecodeResponse parses response bytes.
func DecodeResponse(data []byte) (*Response, error) {
	var resp Response
	if err := Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	switch resp.Type {
	case ResponseWorkerID, ResponseSuccess, ResponseError:
		return &resp, nil
	default:
		return nil, fmt.Errorf("failed to parse response: unknown type %q", resp.Type)
	}
}
