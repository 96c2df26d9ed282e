package config

import "time"

// Config is the root configuration of an sqldao process.
type Config struct {
	App      AppConfig      `koanf:"app" json:"app" yaml:"app"`
	Log      LogConfig      `koanf:"log" json:"log" yaml:"log"`
	Database DatabaseConfig `koanf:"database" json:"database" yaml:"database"`

	Observability ObservabilityConfig `koanf:"observability" json:"observability" yaml:"observability"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	Env  string `koanf:"env" json:"env" yaml:"env" validate:"oneof=development staging production"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}

// DatabaseConfig describes the connection source handed to the dao layer.
// Either ConnectionString or the discrete connection fields must be set.
type DatabaseConfig struct {
	Type     string `koanf:"type" json:"type" yaml:"type" validate:"required,oneof=postgresql oracle sqlite"`
	Host     string `koanf:"host" json:"host" yaml:"host"`
	Port     int    `koanf:"port" json:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Database string `koanf:"database" json:"database" yaml:"database"`
	Username string `koanf:"username" json:"username" yaml:"username"`
	Password string `koanf:"password" json:"-" yaml:"password"`

	ConnectionString string `koanf:"connectionstring" json:"-" yaml:"connectionstring"`

	Pool  PoolConfig  `koanf:"pool" json:"pool" yaml:"pool"`
	Query QueryConfig `koanf:"query" json:"query" yaml:"query"`

	PostgreSQL PostgreSQLConfig `koanf:"postgresql" json:"postgresql" yaml:"postgresql"`
	Oracle     OracleConfig     `koanf:"oracle" json:"oracle" yaml:"oracle"`
	SQLite     SQLiteConfig     `koanf:"sqlite" json:"sqlite" yaml:"sqlite"`
}

// PoolConfig holds database/sql pool sizing.
type PoolConfig struct {
	Max      PoolMaxConfig  `koanf:"max" json:"max" yaml:"max"`
	Idle     PoolIdleConfig `koanf:"idle" json:"idle" yaml:"idle"`
	Lifetime LifetimeConfig `koanf:"lifetime" json:"lifetime" yaml:"lifetime"`
}

// PoolMaxConfig bounds open connections. Zero means unlimited.
type PoolMaxConfig struct {
	Connections int32 `koanf:"connections" json:"connections" yaml:"connections" validate:"gte=0"`
}

// PoolIdleConfig controls idle connections.
type PoolIdleConfig struct {
	Connections int32         `koanf:"connections" json:"connections" yaml:"connections" validate:"gte=0"`
	Time        time.Duration `koanf:"time" json:"time" yaml:"time" validate:"gte=0"`
}

// LifetimeConfig caps how long a pooled connection is reused.
type LifetimeConfig struct {
	Max time.Duration `koanf:"max" json:"max" yaml:"max" validate:"gte=0"`
}

// QueryConfig controls statement tracking.
type QueryConfig struct {
	Slow SlowQueryConfig `koanf:"slow" json:"slow" yaml:"slow"`
	Log  QueryLogConfig  `koanf:"log" json:"log" yaml:"log"`
}

// SlowQueryConfig sets the duration above which a statement is logged as slow.
type SlowQueryConfig struct {
	Threshold time.Duration `koanf:"threshold" json:"threshold" yaml:"threshold" validate:"gte=0"`
}

// QueryLogConfig controls what statement logs contain.
type QueryLogConfig struct {
	// Parameters adds sanitized bind arguments to statement logs.
	Parameters bool `koanf:"parameters" json:"parameters" yaml:"parameters"`
	// MaxLength truncates logged SQL and arguments.
	MaxLength int `koanf:"max" json:"max" yaml:"max" validate:"gte=0"`
}

// PostgreSQLConfig holds PostgreSQL-only settings.
type PostgreSQLConfig struct {
	SSLMode string `koanf:"sslmode" json:"sslmode" yaml:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// OracleConfig holds Oracle-only settings. ServiceName wins over SID.
type OracleConfig struct {
	ServiceName string `koanf:"servicename" json:"servicename" yaml:"servicename"`
	SID         string `koanf:"sid" json:"sid" yaml:"sid"`
}

// SQLiteConfig holds SQLite-only settings.
type SQLiteConfig struct {
	// Path is a file path or ":memory:".
	Path string `koanf:"path" json:"path" yaml:"path"`
}

// ObservabilityConfig controls the OpenTelemetry providers the CLI installs.
// A library host normally installs its own and leaves this disabled.
type ObservabilityConfig struct {
	Enabled bool          `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Trace   TraceConfig   `koanf:"trace" json:"trace" yaml:"trace"`
	Metrics MetricsConfig `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// TraceConfig selects the span exporter. Endpoint "stdout" writes spans to
// the process output instead of an OTLP collector.
type TraceConfig struct {
	Enabled  bool              `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Endpoint string            `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Protocol string            `koanf:"protocol" json:"protocol" yaml:"protocol" validate:"omitempty,oneof=http grpc"`
	Insecure bool              `koanf:"insecure" json:"insecure" yaml:"insecure"`
	Headers  map[string]string `koanf:"headers" json:"-" yaml:"headers"`
	Sample   SampleConfig      `koanf:"sample" json:"sample" yaml:"sample"`
	Batch    BatchConfig       `koanf:"batch" json:"batch" yaml:"batch"`
}

// SampleConfig is the TraceIDRatioBased sampling rate.
type SampleConfig struct {
	Rate float64 `koanf:"rate" json:"rate" yaml:"rate" validate:"gte=0,lte=1"`
}

// BatchConfig bounds how long finished spans wait before export.
type BatchConfig struct {
	Timeout time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gte=0"`
}

// MetricsConfig selects the metric exporter. Protocol and TLS settings are
// shared with Trace.
type MetricsConfig struct {
	Enabled  bool          `koanf:"enabled" json:"enabled" yaml:"enabled"`
	Endpoint string        `koanf:"endpoint" json:"endpoint" yaml:"endpoint"`
	Interval time.Duration `koanf:"interval" json:"interval" yaml:"interval" validate:"gte=0"`
}
