// Package protocol defines the wire shapes exchanged between the host, the
// task orchestrator, and its conversation-state worker.
//
// All payloads are JSON objects tagged by a "type" field. The tag strings are
// part of the interoperability contract and must not change.
package protocol

import (
	"github.com/bytedance/sonic"
)

// codec is the JSON configuration shared by every payload. Map keys are
// sorted. Raw messages are validated and copied as-is, without compaction or
// HTML escaping, so opaque caller JSON survives a round trip unchanged.
var codec = sonic.Config{
	SortMapKeys:    true,
	CopyString:     true,
	ValidateString: true,
}.Froze()

// Marshal encodes v as JSON.
func Marshal(v any) ([]byte, error) {
	return codec.Marshal(v)
}

// MarshalIndent encodes v as indented JSON for display.
func MarshalIndent(v any) ([]byte, error) {
	return codec.MarshalIndent(v, "", "  ")
}

// Unmarshal decodes JSON data into v.
func Unmarshal(data []byte, v any) error {
	return codec.Unmarshal(data, v)
}
