package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sydlexius/mintfront/internal/config"
)

func TestParseFlags_ConfigPathFromEnv(t *testing.T) {
	t.Setenv("MF_CONFIG_PATH", "/etc/mintfront.yaml")
	if f := parseFlags(nil); f.configPath != "/etc/mintfront.yaml" {
		t.Errorf("configPath = %q", f.configPath)
	}
	if f := parseFlags([]string{"--config", "other.yaml"}); f.configPath != "other.yaml" {
		t.Errorf("flag should win, configPath = %q", f.configPath)
	}
}

func TestLoadConfig_FlagsOverrideFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 8000\n  host: 127.0.0.1\nstatic:\n  dir: public\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MF_PORT", "9000")

	cfg, err := loadConfig(parseFlags([]string{"--config", path}))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("env should override file, port = %d", cfg.Server.Port)
	}
	if cfg.Static.Dir != "public" {
		t.Errorf("static dir = %q", cfg.Static.Dir)
	}

	cfg, err = loadConfig(parseFlags([]string{"--config", path, "-p", "7000", "--debug", "--static-dir", "assets"}))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Port != 7000 || cfg.Static.Dir != "assets" {
		t.Errorf("flags not applied: port=%d dir=%q", cfg.Server.Port, cfg.Static.Dir)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("debug should force debug/text logging, got %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if got := logConfig(cfg).String(); got != "level=debug format=text" {
		t.Errorf("logConfig = %q", got)
	}
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	t.Setenv("MF_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := loadConfig(parseFlags([]string{"--port", "70000"})); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestWebhooks(t *testing.T) {
	cfg, err := loadConfig(parseFlags([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{Name: "ok", URL: "https://hooks.example.com/a", Type: "slack"})

	hooks, err := webhooks(cfg)
	if err != nil {
		t.Fatalf("webhooks: %v", err)
	}
	if len(hooks) != 1 || hooks[0].Type != "slack" {
		t.Errorf("hooks = %+v", hooks)
	}

	cfg.Webhooks = append(cfg.Webhooks, config.WebhookConfig{Name: "bad", URL: "not a url"})
	if _, err := webhooks(cfg); err == nil {
		t.Error("expected error for invalid webhook url")
	}
}
