package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
gateway:
  port: 8080
webhooks:
  endpoints:
    - https://primary.example.com/webhook
    - https://secondary.example.com/webhook
  messageTimeout: 3s
  probeTimeout: 1s
  maxAudioBase64Bytes: 1024
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Gateway.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Gateway.Port)
	}
	if len(cfg.Webhooks.Endpoints) != 2 || cfg.Webhooks.Endpoints[0] != "https://primary.example.com/webhook" {
		t.Errorf("Endpoints = %v", cfg.Webhooks.Endpoints)
	}
	if cfg.Webhooks.MessageTimeout != 3*time.Second {
		t.Errorf("MessageTimeout = %v, want 3s", cfg.Webhooks.MessageTimeout)
	}
	if cfg.Webhooks.MaxAudioBase64Bytes != 1024 {
		t.Errorf("MaxAudioBase64Bytes = %d, want 1024", cfg.Webhooks.MaxAudioBase64Bytes)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("RELAY_TEST_PRIMARY", "https://env.example.com/webhook")

	path := writeConfig(t, `
webhooks:
  endpoints:
    - ${RELAY_TEST_PRIMARY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Webhooks.Endpoints[0] != "https://env.example.com/webhook" {
		t.Errorf("Endpoints[0] = %q, want the expanded env value", cfg.Webhooks.Endpoints[0])
	}
}

func TestLoad_DropsUnexpandedEndpoints(t *testing.T) {
	t.Setenv("RELAY_TEST_PRIMARY", "https://env.example.com/webhook")
	os.Unsetenv("RELAY_TEST_MISSING")

	path := writeConfig(t, `
webhooks:
  endpoints:
    - ${RELAY_TEST_PRIMARY}
    - ${RELAY_TEST_MISSING}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Webhooks.Endpoints) != 1 {
		t.Fatalf("Endpoints = %v, unset placeholders must be dropped", cfg.Webhooks.Endpoints)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `gateway: {}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.Gateway.Port != def.Gateway.Port {
		t.Errorf("Port = %d, want default %d", cfg.Gateway.Port, def.Gateway.Port)
	}
	if len(cfg.Webhooks.Endpoints) != len(def.Webhooks.Endpoints) {
		t.Errorf("Endpoints = %v, a sparse config must fall back to defaults", cfg.Webhooks.Endpoints)
	}
	if cfg.Webhooks.MessageTimeout != def.Webhooks.MessageTimeout {
		t.Errorf("MessageTimeout = %v, want default %v", cfg.Webhooks.MessageTimeout, def.Webhooks.MessageTimeout)
	}
	if cfg.Webhooks.MaxAudioBase64Bytes != def.Webhooks.MaxAudioBase64Bytes {
		t.Errorf("MaxAudioBase64Bytes = %d, want default %d", cfg.Webhooks.MaxAudioBase64Bytes, def.Webhooks.MaxAudioBase64Bytes)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() must error for a missing file")
	}
}

func TestResolveConfigPath(t *testing.T) {
	if got := ResolveConfigPath("/etc/relay.yaml"); got != "/etc/relay.yaml" {
		t.Errorf("flag path = %q, want the flag to win", got)
	}

	t.Setenv("RELAY_CONFIG", "/tmp/from-env.yaml")
	if got := ResolveConfigPath(""); got != "/tmp/from-env.yaml" {
		t.Errorf("env path = %q, want RELAY_CONFIG value", got)
	}

	t.Setenv("RELAY_CONFIG", "")
	if got := ResolveConfigPath(""); got != "relay.yaml" {
		t.Errorf("default path = %q, want relay.yaml", got)
	}
}

func TestCreateFromExample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	if err := CreateFromExample(path); err != nil {
		t.Fatalf("CreateFromExample() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated config: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("generated config is empty")
	}
}

func TestCreateFromExample_RefusesOverwrite(t *testing.T) {
	path := writeConfig(t, "gateway:\n  port: 9999\n")

	if err := CreateFromExample(path); err == nil {
		t.Fatal("CreateFromExample() must refuse to overwrite an existing config")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != "gateway:\n  port: 9999\n" {
		t.Error("existing config was modified")
	}
}

func TestRegisterOnReload(t *testing.T) {
	var got *Config
	RegisterOnReload(func(c *Config) { got = c })

	cfg := DefaultConfig()
	notifyReload(cfg)
	if got != cfg {
		t.Error("reload callback did not receive the new config")
	}
}
