package config

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

var current atomic.Pointer[Config]

var (
	onReloadMu        sync.Mutex
	onReloadCallbacks []func(*Config)
)

// Get returns the current in-memory config (hot-reloaded when the file changes).
func Get() *Config { return current.Load() }

// Set sets the current in-memory config. Used at startup and by the file watcher.
func Set(c *Config) {
	if c != nil {
		current.Store(c)
	}
}

// RegisterOnReload registers a callback that runs after config is hot-reloaded
// (e.g. to rebuild the endpoint registry).
func RegisterOnReload(fn func(*Config)) {
	onReloadMu.Lock()
	defer onReloadMu.Unlock()
	onReloadCallbacks = append(onReloadCallbacks, fn)
}

func notifyReload(cfg *Config) {
	onReloadMu.Lock()
	cb := make([]func(*Config), len(onReloadCallbacks))
	copy(cb, onReloadCallbacks)
	onReloadMu.Unlock()
	for _, fn := range cb {
		fn(cfg)
	}
}

//go:embed relay.example.yaml
var exampleConfigBytes []byte

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyLoadDefaults(&cfg)

	return &cfg, nil
}

// applyLoadDefaults fills gaps so the registry non-empty invariant holds
// even for a sparse config file.
func applyLoadDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Gateway.Port <= 0 {
		cfg.Gateway.Port = def.Gateway.Port
	}
	cfg.Webhooks.Endpoints = dropUnexpanded(cfg.Webhooks.Endpoints)
	if len(cfg.Webhooks.Endpoints) == 0 {
		cfg.Webhooks.Endpoints = def.Webhooks.Endpoints
	}
	if cfg.Webhooks.MessageTimeout <= 0 {
		cfg.Webhooks.MessageTimeout = def.Webhooks.MessageTimeout
	}
	if cfg.Webhooks.ProbeTimeout <= 0 {
		cfg.Webhooks.ProbeTimeout = def.Webhooks.ProbeTimeout
	}
	if cfg.Webhooks.MaxAudioBase64Bytes <= 0 {
		cfg.Webhooks.MaxAudioBase64Bytes = def.Webhooks.MaxAudioBase64Bytes
	}
}

// dropUnexpanded removes endpoint entries whose ${VAR} placeholder had no
// matching environment variable, so an unset secondary URL doesn't become
// a permanently-failing endpoint.
func dropUnexpanded(endpoints []string) []string {
	out := endpoints[:0]
	for _, e := range endpoints {
		if e == "" || envVarPattern.MatchString(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func expandEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// ResolveConfigPath finds the config file.
// Priority: --config flag > RELAY_CONFIG env > ./relay.yaml
func ResolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv("RELAY_CONFIG"); p != "" {
		return p
	}
	return "relay.yaml"
}

// Path returns the process-wide config file path (ResolveConfigPath("")).
func Path() string {
	return ResolveConfigPath("")
}

// CreateFromExample writes the embedded relay.example.yaml to targetPath.
// It refuses to overwrite an existing file.
func CreateFromExample(targetPath string) error {
	if _, err := os.Stat(targetPath); err == nil {
		return fmt.Errorf("config file already exists: %s", targetPath)
	}
	if err := os.WriteFile(targetPath, exampleConfigBytes, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Write marshals cfg to YAML and writes it to path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
