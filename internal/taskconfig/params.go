package taskconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// Overrides are caller-supplied values that take precedence over profile
// defaults. A nil field means "not supplied". ModelConfig and MCPServers
// are kept byte-for-byte as the caller sent them.
type Overrides struct {
	SystemPrompt   *string
	InitialMessage *string
	ModelConfig    json.RawMessage
	Temperature    *float64
	MaxTokens      *uint32
	MCPServers     json.RawMessage
	Title          *string
	Description    *string

	AutoExitOnCompletion *bool
	PairGeneration       *bool
	StrictInitiation     *bool

	// Extensions holds every field not consumed above. They are passed
	// through to the configuration document.
	Extensions map[string]json.RawMessage
}

// CreateParams is the decoded creation payload.
type CreateParams struct {
	Profile   models.TaskProfile
	Overrides Overrides
}

// ParseCreateParams decodes a creation payload. An empty payload (or JSON
// null) yields zero params. Keys with a null value count as not supplied.
func ParseCreateParams(data []byte) (*CreateParams, error) {
	params := &CreateParams{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || isNull(trimmed) {
		return params, nil
	}

	var fields map[string]json.RawMessage
	if err := protocol.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("parse create params: %w", err)
	}

	ov := &params.Overrides
	var task string
	decoders := []struct {
		key string
		dst any
	}{
		{"task", &task},
		{"task_description", &params.Profile.Description},
		{"directory", &params.Profile.Directory},
		{"system_prompt", &ov.SystemPrompt},
		{"initial_message", &ov.InitialMessage},
		{"temperature", &ov.Temperature},
		{"max_tokens", &ov.MaxTokens},
		{"title", &ov.Title},
		{"description", &ov.Description},
		{"auto_exit_on_completion", &ov.AutoExitOnCompletion},
		{"pair_generation", &ov.PairGeneration},
		{"strict_initiation", &ov.StrictInitiation},
	}

	for _, d := range decoders {
		raw, ok := fields[d.key]
		if !ok {
			continue
		}
		delete(fields, d.key)
		if isNull(raw) {
			continue
		}
		if err := protocol.Unmarshal(raw, d.dst); err != nil {
			return nil, fmt.Errorf("parse create params: field %s: %w", d.key, err)
		}
	}
	params.Profile.Task = models.TaskName(task)

	for key, dst := range map[string]*json.RawMessage{
		"model_config": &ov.ModelConfig,
		"mcp_servers":  &ov.MCPServers,
	} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)
		if !isNull(raw) {
			*dst = raw
		}
	}

	if len(fields) > 0 {
		ov.Extensions = fields
	}
	return params, nil
}

func isNull(raw []byte) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
