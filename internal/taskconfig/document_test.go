package taskconfig

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDocument_ExtensionsNeverOverwrite(t *testing.T) {
	doc := &Document{
		ModelConfig:  json.RawMessage(`{"model":"m"}`),
		Temperature:  0.3,
		MaxTokens:    100,
		SystemPrompt: "prompt",
		Title:        "T",
		Extensions: map[string]json.RawMessage{
			"temperature": json.RawMessage(`9.9`),
			"title":       json.RawMessage(`"hijacked"`),
			"team":        json.RawMessage(`"infra"`),
		},
	}

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out["temperature"] != 0.3 {
		t.Errorf("temperature = %v, want 0.3", out["temperature"])
	}
	if out["title"] != "T" {
		t.Errorf("title = %v, want T", out["title"])
	}
	if out["team"] != "infra" {
		t.Errorf("team = %v, want infra", out["team"])
	}
}

func TestDocument_SortedKeys(t *testing.T) {
	doc := &Document{SystemPrompt: "p", Extensions: map[string]json.RawMessage{"aaa": json.RawMessage(`1`)}}

	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.HasPrefix(string(data), `{"aaa":1,"description":`) {
		t.Errorf("keys not sorted: %s", data)
	}
	if !strings.Contains(string(data), `"mcp_servers":[]`) {
		t.Errorf("nil server list should encode as []: %s", data)
	}
}

func TestDecodeDocument(t *testing.T) {
	doc, err := newTestDeriver().Derive("o", profileCommit(), Overrides{
		Extensions: map[string]json.RawMessage{"team": json.RawMessage(`"infra"`)},
	})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	data, err := doc.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument failed: %v", err)
	}
	if decoded.Temperature != doc.Temperature || decoded.MaxTokens != doc.MaxTokens {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.SystemPrompt != doc.SystemPrompt || decoded.Title != doc.Title {
		t.Error("prompt/title mismatch after decode")
	}
	if string(decoded.MCPServers) != string(doc.MCPServers) {
		t.Errorf("MCPServers = %s, want %s", decoded.MCPServers, doc.MCPServers)
	}
	if string(decoded.Extensions["team"]) != `"infra"` {
		t.Errorf("team = %s", decoded.Extensions["team"])
	}

	again, err := decoded.Encode()
	if err != nil {
		t.Fatalf("re-Encode failed: %v", err)
	}
	if string(again) != string(data) {
		t.Errorf("re-encoded document differs:\n%s\n%s", again, data)
	}
}

func TestDecodeDocument_Invalid(t *testing.T) {
	if _, err := DecodeDocument([]byte(`[]`)); err == nil {
		t.Error("expected error for non-object document")
	}
}
