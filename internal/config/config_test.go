package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Pipeline.IntervalSeconds != 1800 {
		t.Fatalf("interval = %d, want 1800", cfg.Pipeline.IntervalSeconds)
	}
	if cfg.Pipeline.MaxAttempts != 5 {
		t.Fatalf("maxAttempts = %d, want 5", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Pipeline.RelevanceThreshold != 5 {
		t.Fatalf("threshold = %d, want 5", cfg.Pipeline.RelevanceThreshold)
	}
	if cfg.Pipeline.WindowSize != 15 {
		t.Fatalf("windowSize = %d, want 15", cfg.Pipeline.WindowSize)
	}
	if cfg.Gateway.MaxConcurrent != 5 {
		t.Fatalf("gateway cap = %d, want 5", cfg.Gateway.MaxConcurrent)
	}
	if len(cfg.Sources) == 0 {
		t.Fatal("default sources missing")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
pipeline:
  intervalSeconds: 600
  maxAttempts: 3
fetch:
  concurrency: 2
sources:
  - name: custom
    url: https://example.com/feed
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Pipeline.IntervalSeconds != 600 {
		t.Fatalf("interval = %d, want 600", cfg.Pipeline.IntervalSeconds)
	}
	if cfg.Pipeline.MaxAttempts != 3 {
		t.Fatalf("maxAttempts = %d, want 3", cfg.Pipeline.MaxAttempts)
	}
	if cfg.Fetch.Concurrency != 2 {
		t.Fatalf("concurrency = %d, want 2", cfg.Fetch.Concurrency)
	}
	// Untouched fields keep their defaults.
	if cfg.Pipeline.WindowSize != 15 {
		t.Fatalf("windowSize = %d, want default 15", cfg.Pipeline.WindowSize)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "custom" {
		t.Fatalf("sources not overridden: %+v", cfg.Sources)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
gateway:
  apiKey: from-file
notifications:
  telegram:
    botToken: file-token
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(gatewayAPIKeyEnv, "from-env")
	t.Setenv(telegramTokenEnv, "env-token")

	cfg := Load()

	if cfg.Gateway.APIKey != "from-env" {
		t.Fatalf("apiKey = %q, want env override", cfg.Gateway.APIKey)
	}
	if cfg.Notifications.Telegram.BotToken != "env-token" {
		t.Fatalf("botToken = %q, want env override", cfg.Notifications.Telegram.BotToken)
	}
}

func TestLoadIgnoresBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{{{not yaml"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Pipeline.IntervalSeconds != 1800 {
		t.Fatal("broken file must fall back to defaults")
	}
}
