package taskconfig

import (
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// Document keys written by the deriver. Extensions never overwrite them.
const (
	keyModelConfig  = "model_config"
	keyTemperature  = "temperature"
	keyMaxTokens    = "max_tokens"
	keySystemPrompt = "system_prompt"
	keyMCPServers   = "mcp_servers"
	keyTitle        = "title"
	keyDescription  = "description"
)

// Document is the configuration handed to the spawned worker. ModelConfig
// and MCPServers are emitted verbatim.
type Document struct {
	ModelConfig  json.RawMessage
	Temperature  float64
	MaxTokens    uint32
	SystemPrompt string
	MCPServers   json.RawMessage
	Title        string
	Description  string

	// Extensions are pass-through fields. Keys that collide with a named
	// field are dropped on encode.
	Extensions map[string]json.RawMessage
}

// MarshalJSON writes the named fields first-writer-wins over the extensions.
// Keys are emitted sorted.
func (d Document) MarshalJSON() ([]byte, error) {
	servers := d.MCPServers
	if len(servers) == 0 {
		servers = json.RawMessage("[]")
	}
	modelConfig := d.ModelConfig
	if len(modelConfig) == 0 {
		modelConfig = json.RawMessage("null")
	}

	out := map[string]any{
		keyModelConfig:  modelConfig,
		keyTemperature:  d.Temperature,
		keyMaxTokens:    d.MaxTokens,
		keySystemPrompt: d.SystemPrompt,
		keyMCPServers:   servers,
		keyTitle:        d.Title,
		keyDescription:  d.Description,
	}
	for k, v := range d.Extensions {
		if _, taken := out[k]; taken {
			continue
		}
		out[k] = v
	}
	return protocol.Marshal(out)
}

// UnmarshalJSON reads a document; unrecognized keys become extensions.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := protocol.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parse configuration document: %w", err)
	}

	doc := Document{}
	targets := map[string]any{
		keyTemperature:  &doc.Temperature,
		keyMaxTokens:    &doc.MaxTokens,
		keySystemPrompt: &doc.SystemPrompt,
		keyTitle:        &doc.Title,
		keyDescription:  &doc.Description,
	}
	for key, dst := range targets {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		delete(fields, key)
		if isNull(raw) {
			continue
		}
		if err := protocol.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("parse configuration document: field %s: %w", key, err)
		}
	}
	if raw, ok := fields[keyModelConfig]; ok {
		delete(fields, keyModelConfig)
		doc.ModelConfig = raw
	}
	if raw, ok := fields[keyMCPServers]; ok {
		delete(fields, keyMCPServers)
		if !isNull(raw) {
			doc.MCPServers = raw
		}
	}
	if len(fields) > 0 {
		doc.Extensions = fields
	}

	*d = doc
	return nil
}

// Servers decodes the tool server list.
func (d *Document) Servers() ([]models.ToolServer, error) {
	if len(d.MCPServers) == 0 {
		return nil, nil
	}
	var servers []models.ToolServer
	if err := protocol.Unmarshal(d.MCPServers, &servers); err != nil {
		return nil, fmt.Errorf("decode mcp_servers: %w", err)
	}
	return servers, nil
}

// Encode serializes the document.
func (d *Document) Encode() ([]byte, error) {
	data, err := protocol.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize config: %w", err)
	}
	return data, nil
}

// DecodeDocument parses an encoded document.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := protocol.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
