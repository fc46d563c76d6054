// Package config handles configuration loading and management for taskmgr.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/taskmgr/internal/logging"
	"github.com/ShayCichocki/taskmgr/internal/taskconfig"
)

// EnvPrefix prefixes environment overrides, e.g. TASKMGR_MODEL_NAME.
const EnvPrefix = "TASKMGR"

// ProjectConfigName is the project-level override file.
const ProjectConfigName = ".taskmgr.yaml"

// Default manifest locators. The chat-state and git-tools locators are
// resolved relative to the host's working directory.
const (
	DefaultChatStateManifest   = "actors/chat-state/manifest.toml"
	DefaultTaskMonitorManifest = "https://github.com/colinrozzi/task-monitor-mcp-actor/releases/latest/download/manifest.toml"
	DefaultGitToolsManifest    = "actors/git-mcp/manifest.toml"
)

// Config holds all configuration for taskmgr.
type Config struct {
	Manifests    ManifestsConfig `mapstructure:"manifests"`
	Model        ModelConfig     `mapstructure:"model"`
	Defaults     DefaultsConfig  `mapstructure:"defaults"`
	ProfilesFile string          `mapstructure:"profiles_file"`
	Store        StoreConfig     `mapstructure:"store"`
	Signals      SignalsConfig   `mapstructure:"signals"`
	Logging      LoggingConfig   `mapstructure:"logging"`
}

// ManifestsConfig locates the actors the orchestrator spawns or references.
type ManifestsConfig struct {
	ChatState   string `mapstructure:"chat_state"`
	TaskMonitor string `mapstructure:"task_monitor"`
	GitTools    string `mapstructure:"git_tools"`
}

// ModelConfig is the default model selector written into worker configuration.
type ModelConfig struct {
	Name     string `mapstructure:"name"`
	Provider string `mapstructure:"provider"`
}

// DefaultsConfig holds derivation defaults.
type DefaultsConfig struct {
	MaxTokens uint32 `mapstructure:"max_tokens"`
}

// StoreConfig locates the actor store. An empty path selects the project
// store when present, else the global one.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// SignalsConfig locates the operator signal directory. Empty means next to
// the store.
type SignalsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (TASKMGR_*)
// 2. Project config (.taskmgr.yaml in current directory or parent)
// 3. User config (~/.config/taskmgr/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading project config %s: %w", projectConfig, err)
		}
		if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := newViper()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

// Save writes the configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))
	for key, value := range cfg.values() {
		v.Set(key, value)
	}
	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.ProfilesFile = os.ExpandEnv(cfg.ProfilesFile)
	cfg.Store.Path = os.ExpandEnv(cfg.Store.Path)
	cfg.Signals.Dir = os.ExpandEnv(cfg.Signals.Dir)
	cfg.Logging.File = os.ExpandEnv(cfg.Logging.File)
	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	for key, value := range Default().values() {
		v.SetDefault(key, value)
	}
}

// values returns the typed value of every key.
func (c *Config) values() map[string]any {
	return map[string]any{
		"manifests.chat_state":   c.Manifests.ChatState,
		"manifests.task_monitor": c.Manifests.TaskMonitor,
		"manifests.git_tools":    c.Manifests.GitTools,
		"model.name":             c.Model.Name,
		"model.provider":         c.Model.Provider,
		"defaults.max_tokens":    c.Defaults.MaxTokens,
		"profiles_file":          c.ProfilesFile,
		"store.path":             c.Store.Path,
		"signals.dir":            c.Signals.Dir,
		"logging.level":          c.Logging.Level,
		"logging.format":         c.Logging.Format,
		"logging.file":           c.Logging.File,
		"logging.max_size_mb":    c.Logging.MaxSizeMB,
		"logging.max_backups":    c.Logging.MaxBackups,
		"logging.max_age_days":   c.Logging.MaxAgeDays,
	}
}

// getUserConfigDir returns the XDG config directory for taskmgr.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "taskmgr")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "taskmgr")
	}
	return filepath.Join(home, ".config", "taskmgr")
}

// findProjectConfig searches for .taskmgr.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ProjectConfigName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	settings := taskconfig.DefaultSettings()
	logs := logging.DefaultConfig()
	return &Config{
		Manifests: ManifestsConfig{
			ChatState:   DefaultChatStateManifest,
			TaskMonitor: DefaultTaskMonitorManifest,
			GitTools:    DefaultGitToolsManifest,
		},
		Model: ModelConfig{
			Name:     settings.Model,
			Provider: settings.Provider,
		},
		Defaults: DefaultsConfig{
			MaxTokens: settings.MaxTokens,
		},
		Logging: LoggingConfig{
			Level:      logs.Level,
			Format:     logs.Format,
			MaxSizeMB:  logs.MaxSizeMB,
			MaxBackups: logs.MaxBackups,
			MaxAgeDays: logs.MaxAgeDays,
		},
	}
}

// Keys returns every configuration key in display order.
func Keys() []string {
	return []string{
		"manifests.chat_state",
		"manifests.task_monitor",
		"manifests.git_tools",
		"model.name",
		"model.provider",
		"defaults.max_tokens",
		"profiles_file",
		"store.path",
		"signals.dir",
		"logging.level",
		"logging.format",
		"logging.file",
		"logging.max_size_mb",
		"logging.max_backups",
		"logging.max_age_days",
	}
}

// Get retrieves a configuration value by dot-notation key.
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(key) {
	case "manifests.chat_state":
		return c.Manifests.ChatState, nil
	case "manifests.task_monitor":
		return c.Manifests.TaskMonitor, nil
	case "manifests.git_tools":
		return c.Manifests.GitTools, nil
	case "model.name":
		return c.Model.Name, nil
	case "model.provider":
		return c.Model.Provider, nil
	case "defaults.max_tokens":
		return strconv.FormatUint(uint64(c.Defaults.MaxTokens), 10), nil
	case "profiles_file":
		return c.ProfilesFile, nil
	case "store.path":
		return c.Store.Path, nil
	case "signals.dir":
		return c.Signals.Dir, nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "logging.file":
		return c.Logging.File, nil
	case "logging.max_size_mb":
		return strconv.Itoa(c.Logging.MaxSizeMB), nil
	case "logging.max_backups":
		return strconv.Itoa(c.Logging.MaxBackups), nil
	case "logging.max_age_days":
		return strconv.Itoa(c.Logging.MaxAgeDays), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set sets a configuration value by dot-notation key.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "manifests.chat_state":
		c.Manifests.ChatState = value
	case "manifests.task_monitor":
		c.Manifests.TaskMonitor = value
	case "manifests.git_tools":
		c.Manifests.GitTools = value
	case "model.name":
		c.Model.Name = value
	case "model.provider":
		c.Model.Provider = value
	case "defaults.max_tokens":
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil || n == 0 {
			return fmt.Errorf("invalid value for defaults.max_tokens: %q", value)
		}
		c.Defaults.MaxTokens = uint32(n)
	case "profiles_file":
		c.ProfilesFile = value
	case "store.path":
		c.Store.Path = value
	case "signals.dir":
		c.Signals.Dir = value
	case "logging.level":
		if _, err := logging.ParseLevel(value); err != nil {
			return err
		}
		c.Logging.Level = value
	case "logging.format":
		c.Logging.Format = value
	case "logging.file":
		c.Logging.File = value
	case "logging.max_size_mb", "logging.max_backups", "logging.max_age_days":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid value for %s: %q", key, value)
		}
		switch strings.ToLower(key) {
		case "logging.max_size_mb":
			c.Logging.MaxSizeMB = n
		case "logging.max_backups":
			c.Logging.MaxBackups = n
		default:
			c.Logging.MaxAgeDays = n
		}
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
