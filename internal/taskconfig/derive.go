package taskconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/taskmgr/internal/protocol"
	"github.com/ShayCichocki/taskmgr/pkg/models"
)

// Settings are the environment-specific inputs to derivation. They are
// resolved by the composition root, typically from application config.
type Settings struct {
	// TaskMonitorManifest locates the task-monitor tool actor.
	TaskMonitorManifest string
	// GitToolsManifest locates the version-control tool actor.
	GitToolsManifest string
	// Model and Provider form the default model selector.
	Model    string
	Provider string
	// MaxTokens is the global max-tokens default.
	MaxTokens uint32
}

// DefaultSettings returns settings with the built-in model defaults and no
// manifest locators.
func DefaultSettings() Settings {
	return Settings{
		Model:     string(anthropic.ModelClaudeSonnet4_20250514),
		Provider:  "anthropic",
		MaxTokens: DefaultMaxTokens,
	}
}

// Policy controls how the orchestrator drives its worker.
type Policy struct {
	// PairGeneration sends generate_completion right after every
	// successfully appended message.
	PairGeneration bool `json:"pair_generation"`
	// StrictInitiation turns a failed start-session send into an error
	// response instead of a logged warning.
	StrictInitiation bool `json:"strict_initiation"`
	// AutoExitOnCompletion requests shutdown when the task completes.
	AutoExitOnCompletion bool `json:"auto_exit_on_completion"`
}

// Plan is everything the orchestrator needs to spawn and later drive its
// worker.
type Plan struct {
	Document       *Document
	Profile        models.TaskProfile
	InitialMessage *string
	Policy         Policy
}

// Deriver turns task profiles into configuration documents.
type Deriver struct {
	registry *Registry
	settings Settings
}

// NewDeriver creates a Deriver. Zero-valued model settings fall back to
// DefaultSettings.
func NewDeriver(registry *Registry, settings Settings) *Deriver {
	if registry == nil {
		registry = DefaultRegistry()
	}
	defaults := DefaultSettings()
	if settings.Model == "" {
		settings.Model = defaults.Model
	}
	if settings.Provider == "" {
		settings.Provider = defaults.Provider
	}
	if settings.MaxTokens == 0 {
		settings.MaxTokens = defaults.MaxTokens
	}
	return &Deriver{registry: registry, settings: settings}
}

// Registry returns the profile registry used by the deriver.
func (d *Deriver) Registry() *Registry {
	return d.registry
}

// Plan derives the full creation plan for an orchestrator with the given id.
// The result depends only on its inputs.
func (d *Deriver) Plan(selfID string, params *CreateParams) (*Plan, error) {
	if params == nil {
		params = &CreateParams{}
	}
	doc, err := d.Derive(selfID, params.Profile, params.Overrides)
	if err != nil {
		return nil, err
	}
	return &Plan{
		Document:       doc,
		Profile:        params.Profile,
		InitialMessage: d.InitialMessage(params.Profile, params.Overrides),
		Policy:         d.Policy(params.Profile, params.Overrides),
	}, nil
}

// Derive builds the configuration document.
func (d *Deriver) Derive(selfID string, profile models.TaskProfile, ov Overrides) (*Document, error) {
	p, known := d.registry.Lookup(profile.Task)

	doc := &Document{
		SystemPrompt: d.systemPrompt(p, known, profile, ov),
		Temperature:  p.Temperature,
		MaxTokens:    d.settings.MaxTokens,
		Title:        p.Title,
		Description:  p.Description,
		Extensions:   ov.Extensions,
	}

	if ov.Temperature != nil {
		doc.Temperature = *ov.Temperature
	}
	if ov.MaxTokens != nil {
		doc.MaxTokens = *ov.MaxTokens
	}
	if ov.Title != nil {
		doc.Title = *ov.Title
	}
	if ov.Description != nil {
		doc.Description = *ov.Description
	}

	if len(ov.MCPServers) > 0 {
		doc.MCPServers = ov.MCPServers
	} else {
		servers, err := d.defaultServers(selfID, p, profile.Directory)
		if err != nil {
			return nil, err
		}
		encoded, err := protocol.Marshal(servers)
		if err != nil {
			return nil, fmt.Errorf("build mcp servers: %w", err)
		}
		doc.MCPServers = encoded
	}

	if len(ov.ModelConfig) > 0 {
		doc.ModelConfig = ov.ModelConfig
	} else {
		mc, err := protocol.Marshal(map[string]string{
			"model":    d.settings.Model,
			"provider": d.settings.Provider,
		})
		if err != nil {
			return nil, fmt.Errorf("build model config: %w", err)
		}
		doc.ModelConfig = mc
	}

	return doc, nil
}

// systemPrompt composes the base prompt with directory context, task steps,
// and the completion instruction, in that order.
func (d *Deriver) systemPrompt(p Profile, known bool, profile models.TaskProfile, ov Overrides) string {
	var b strings.Builder

	if ov.SystemPrompt != nil {
		b.WriteString(*ov.SystemPrompt)
	} else {
		b.WriteString(p.SystemPrompt)
	}

	if profile.Directory != "" {
		b.WriteString("\n\nWorking directory: ")
		b.WriteString(profile.Directory)
		b.WriteString("\nRun all commands and file operations relative to this directory.")
	}

	if known && len(p.Steps) > 0 {
		b.WriteString("\n\nFollow these steps:")
		for i, step := range p.Steps {
			fmt.Fprintf(&b, "\n%d. %s", i+1, step)
		}
	}

	if profile.Task.IsSet() {
		b.WriteString(mandatoryCompletion)
	} else {
		b.WriteString(optionalCompletion)
	}

	return b.String()
}

// defaultServers returns the profile's tool servers. The task monitor is
// always present and every actor server learns the orchestrator's id.
func (d *Deriver) defaultServers(selfID string, p Profile, directory string) ([]models.ToolServer, error) {
	monitorState, err := protocol.Marshal(map[string]string{"management_actor": selfID})
	if err != nil {
		return nil, fmt.Errorf("build task monitor init state: %w", err)
	}
	servers := []models.ToolServer{
		models.NewActorServer(d.settings.TaskMonitorManifest, json.RawMessage(monitorState)),
	}

	if p.GitTools {
		gitInit := map[string]string{"management_actor": selfID}
		if directory != "" {
			gitInit["directory"] = directory
		}
		gitState, err := protocol.Marshal(gitInit)
		if err != nil {
			return nil, fmt.Errorf("build git tools init state: %w", err)
		}
		servers = append(servers, models.NewActorServer(d.settings.GitToolsManifest, json.RawMessage(gitState)))
	}

	return servers, nil
}

// InitialMessage resolves the message sent on start-session. It is nil when
// no task was assigned and the caller supplied none.
func (d *Deriver) InitialMessage(profile models.TaskProfile, ov Overrides) *string {
	if ov.InitialMessage != nil {
		msg := *ov.InitialMessage
		return &msg
	}
	if !profile.Task.IsSet() {
		return nil
	}

	msg := fallbackInitialMessage
	if p, known := d.registry.Lookup(profile.Task); known && p.InitialMessage != "" {
		msg = p.InitialMessage
	}
	if profile.Description != "" {
		msg += "\n\nTask details: " + profile.Description
	}
	return &msg
}

// Policy resolves the worker-driving policy. Task-oriented orchestrators
// pair generation with every message; strictness follows the profile.
func (d *Deriver) Policy(profile models.TaskProfile, ov Overrides) Policy {
	p, _ := d.registry.Lookup(profile.Task)
	policy := Policy{
		PairGeneration:       profile.Task.IsSet(),
		StrictInitiation:     p.StrictInitiation,
		AutoExitOnCompletion: true,
	}
	if ov.PairGeneration != nil {
		policy.PairGeneration = *ov.PairGeneration
	}
	if ov.StrictInitiation != nil {
		policy.StrictInitiation = *ov.StrictInitiation
	}
	if ov.AutoExitOnCompletion != nil {
		policy.AutoExitOnCompletion = *ov.AutoExitOnCompletion
	}
	return policy
}
