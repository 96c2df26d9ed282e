package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix scopes the environment variables read by Load.
const EnvPrefix = "SQLDAO_"

// DefaultFile is read by Load when no explicit paths are given.
const DefaultFile = "config.yaml"

// Load loads configuration from multiple sources with priority:
// 1. Environment variables prefixed with SQLDAO_ (highest priority)
// 2. YAML files, in the given order, then config.<app.env>.yaml next to the first
// 3. Default values (lowest priority)
//
// Missing files are skipped. With no paths, config.yaml in the working directory is tried.
func Load(paths ...string) (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if len(paths) == 0 {
		paths = []string{DefaultFile}
	}
	for _, p := range paths {
		if err := loadOptionalFile(k, p); err != nil {
			return nil, err
		}
	}

	if env := k.String("app.env"); env != "" {
		if err := loadOptionalFile(k, envFileFor(paths[0], env)); err != nil {
			return nil, err
		}
	}

	return finish(k)
}

// LoadBytes loads configuration from an in-memory YAML document, layered over the
// defaults and under environment overrides.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return finish(k)
}

func finish(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(envprovider.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// envKey converts SQLDAO_DATABASE_HOST to database.host.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

func loadOptionalFile(k *koanf.Koanf, path string) error {
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// envFileFor returns config.<env>.yaml in the directory of base.
func envFileFor(base, env string) string {
	dir := ""
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		dir = base[:i+1]
	}
	return fmt.Sprintf("%sconfig.%s.yaml", dir, env)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name": "sqldao",
		"app.env":  EnvDevelopment,

		"log.level":  "info",
		"log.pretty": false,

		// No database.type default: a source is only built when explicitly configured.
		"database.pool.max.connections":  25,
		"database.pool.idle.connections": 2,
		"database.pool.idle.time":        "5m",
		"database.pool.lifetime.max":     "30m",
		"database.query.slow.threshold":  defaultSlowQueryThreshold.String(),
		"database.query.log.parameters":  false,
		"database.query.log.max":         defaultMaxQueryLength,

		"observability.enabled":             false,
		"observability.trace.enabled":       true,
		"observability.trace.endpoint":      "stdout",
		"observability.trace.protocol":      "http",
		"observability.trace.insecure":      false,
		"observability.trace.sample.rate":   1.0,
		"observability.trace.batch.timeout": "500ms",
		"observability.metrics.enabled":     false,
		"observability.metrics.endpoint":    "stdout",
		"observability.metrics.interval":    "10s",
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
