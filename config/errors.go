package config

import (
	"fmt"
	"strings"
)

// ConfigError is a configuration error with actionable guidance.
//
//nolint:revive // exported name kept explicit for callers outside the package
type ConfigError struct {
	Category string // "missing" or "invalid"
	Field    string // dotted koanf path, e.g. "database.host"
	Message  string
	Action   string
}

// Error renders the error in lowercase, e.g. "config_missing: database.host required set ...".
func (e *ConfigError) Error() string {
	parts := make([]string, 0, 4)
	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	for _, p := range []string{e.Field, e.Message, e.Action} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// NewMissingFieldError reports a required field that is not set.
func NewMissingFieldError(field string) *ConfigError {
	return &ConfigError{
		Category: "missing",
		Field:    field,
		Message:  "required",
		Action:   fmt.Sprintf("set %s env var or add %s to config.yaml", EnvVarFor(field), field),
	}
}

// NewInvalidFieldError reports a field with an unusable value.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{Category: "invalid", Field: field, Message: message}
	if len(validOptions) > 0 {
		err.Action = fmt.Sprintf("must be one of: %s", strings.Join(validOptions, ", "))
	}
	return err
}

// EnvVarFor maps a dotted config path to its environment variable name.
func EnvVarFor(field string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(field, ".", "_"))
}
