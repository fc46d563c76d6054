package config

import (
	"fmt"

	"github.com/ShayCichocki/taskmgr/internal/logging"
	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
)

// DeriverSettings returns the derivation inputs resolved from configuration.
func (c *Config) DeriverSettings() taskconfig.Settings {
	return taskconfig.Settings{
		TaskMonitorManifest: c.Manifests.TaskMonitor,
		GitToolsManifest:    c.Manifests.GitTools,
		Model:               c.Model.Name,
		Provider:            c.Model.Provider,
		MaxTokens:           c.Defaults.MaxTokens,
	}
}

// Registry returns the built-in profiles merged with the configured
// profiles file, if any.
func (c *Config) Registry() (*taskconfig.Registry, error) {
	registry := taskconfig.DefaultRegistry()
	if c.ProfilesFile == "" {
		return registry, nil
	}
	if err := registry.LoadFile(c.ProfilesFile); err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return registry, nil
}

// Deriver builds a configuration deriver from the configured registry and settings.
func (c *Config) Deriver() (*taskconfig.Deriver, error) {
	registry, err := c.Registry()
	if err != nil {
		return nil, err
	}
	return taskconfig.NewDeriver(registry, c.DeriverSettings()), nil
}

// LogConfig converts the logging section. A configured file switches output
// to both stderr and the file.
func (c *Config) LogConfig() logging.Config {
	out := logging.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Output:     "stderr",
		FilePath:   c.Logging.File,
		MaxSizeMB:  c.Logging.MaxSizeMB,
		MaxBackups: c.Logging.MaxBackups,
		MaxAgeDays: c.Logging.MaxAgeDays,
	}
	if out.FilePath != "" {
		out.Output = "both"
	}
	return out
}
