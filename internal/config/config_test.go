package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"podscribe/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: %s", resolved)
	}
	if cfg.Fetch.MaxRetries != 3 || cfg.Fetch.RetryDelay != 5 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Events.KeepaliveInterval != 20 {
		t.Fatalf("unexpected keepalive default: %d", cfg.Events.KeepaliveInterval)
	}
}

func TestLoadAppliesOverridesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "~/podscribe-data"
bind = "127.0.0.1:9000"

[workflow]
max_active_jobs = 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Workflow.MaxActiveJobs != 5 {
		t.Fatalf("override not applied: %d", cfg.Workflow.MaxActiveJobs)
	}
	if strings.HasPrefix(cfg.Paths.DataDir, "~") {
		t.Fatalf("expected tilde expansion, got %s", cfg.Paths.DataDir)
	}
	if cfg.Paths.Bind != "127.0.0.1:9000" {
		t.Fatalf("unexpected bind: %s", cfg.Paths.Bind)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero retries", func(c *config.Config) { c.Fetch.MaxRetries = 0 }},
		{"empty model url", func(c *config.Config) { c.Engine.ModelURL = "" }},
		{"zero keepalive", func(c *config.Config) { c.Events.KeepaliveInterval = 0 }},
		{"zero pool", func(c *config.Config) { c.Workflow.MaxActiveJobs = 0 }},
		{"empty bind", func(c *config.Config) { c.Paths.Bind = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[engine]") {
		t.Fatal("sample missing engine section")
	}
}
