package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
device:
  id: bot-7
  base_url: http://10.0.0.7
  poll_interval: 3s
queue:
  max_attempts: 5
  dedup_actions: [set-volume]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.Device.ID != "bot-7" || cfg.Device.BaseURL != "http://10.0.0.7" {
		t.Errorf("unexpected device config: %+v", cfg.Device)
	}
	if cfg.Device.PollInterval != 3*time.Second {
		t.Errorf("PollInterval = %s, want 3s", cfg.Device.PollInterval)
	}
	if cfg.Device.SyncTimeout != 30*time.Second {
		t.Errorf("SyncTimeout default = %s, want 30s", cfg.Device.SyncTimeout)
	}
	if cfg.Queue.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Queue.MaxAttempts)
	}
	if len(cfg.Queue.DedupActions) != 1 || cfg.Queue.DedupActions[0] != "set-volume" {
		t.Errorf("DedupActions = %v", cfg.Queue.DedupActions)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "port: \"9090\"\n")
	t.Setenv("BANTAY_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "7070" {
		t.Fatalf("Port = %q, want env override 7070", cfg.Port)
	}
}

func TestLoad_RejectsInvalidAttempts(t *testing.T) {
	path := writeConfig(t, "queue:\n  max_attempts: 0\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for max_attempts=0")
	}
}
