package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriverSettings(t *testing.T) {
	cfg := Default()
	cfg.Manifests.GitTools = "/srv/git.toml"

	s := cfg.DeriverSettings()
	if s.GitToolsManifest != "/srv/git.toml" || s.TaskMonitorManifest != DefaultTaskMonitorManifest {
		t.Errorf("unexpected manifests %+v", s)
	}
	if s.MaxTokens != 8192 || s.Provider != "anthropic" {
		t.Errorf("unexpected model settings %+v", s)
	}
}

func TestRegistry_ProfilesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	content := "profiles:\n  - name: deploy\n    title: Deploy Assistant\n    system_prompt: You deploy.\n    temperature: 0.4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default()
	cfg.ProfilesFile = path
	d, err := cfg.Deriver()
	if err != nil {
		t.Fatalf("Deriver failed: %v", err)
	}
	if _, ok := d.Registry().Lookup("deploy"); !ok {
		t.Error("expected deploy profile from file")
	}

	cfg.ProfilesFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := cfg.Registry(); err == nil {
		t.Error("expected error for missing profiles file")
	}
}

func TestLogConfig(t *testing.T) {
	cfg := Default()
	if out := cfg.LogConfig(); out.Output != "stderr" {
		t.Errorf("expected stderr output, got %q", out.Output)
	}
	cfg.Logging.File = "/var/log/taskmgr.log"
	if out := cfg.LogConfig(); out.Output != "both" || out.FilePath != "/var/log/taskmgr.log" {
		t.Errorf("expected file output, got %+v", out)
	}
}
