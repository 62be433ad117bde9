package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/beacon/pkg/beacon/schema"
)

// FromFile loads configuration from a file, auto-detecting format by
// extension. Supported extensions: .yaml, .yml, .json
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return Config{}, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses YAML data into a Config. Missing keys keep their
// DefaultConfig values; durations accept either "2s" strings or plain
// numbers of seconds.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return fromValues(m), nil
}

// FromJSON parses JSON data into a Config. Missing keys keep their
// DefaultConfig values.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return fromValues(m), nil
}

// envPrefix scopes the environment variables FromEnv reads.
const envPrefix = "BEACON_"

// FromEnv builds a Config from BEACON_* environment variables, for
// example:
//
//	BEACON_COLLECT_URL=https://collect.internal
//	BEACON_SERVICE=search-gateway
//	BEACON_TIMEOUT=5s
//	BEACON_BATCH_SIZE=20
//
// Unset variables keep their DefaultConfig values.
func FromEnv() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	cfg := DefaultConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// fromValues extracts the known keys over DefaultConfig.
func fromValues(m map[string]any) Config {
	v := values(m)
	cfg := DefaultConfig
	cfg.CollectURL = v.str("collect_url", "")
	cfg.Service = schema.ServiceIdentity(v.str("service", ""))
	cfg.APIKey = v.str("api_key", "")
	cfg.Timeout = v.duration("timeout", cfg.Timeout)
	cfg.MaxRetries = v.integer("max_retries", cfg.MaxRetries)
	cfg.BatchSize = v.integer("batch_size", cfg.BatchSize)
	cfg.FlushInterval = v.duration("flush_interval", cfg.FlushInterval)
	cfg.RetryBaseDelay = v.duration("retry_base_delay", cfg.RetryBaseDelay)
	return cfg
}
