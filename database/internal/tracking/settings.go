// Package tracking wraps a connection source so every prepared statement is
// logged, traced and measured. Slow statements are logged at warn level and
// failures at error level.
package tracking

import (
	"time"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/logger"
)

const (
	// DefaultSlowQueryThreshold is used when database.query.slow.threshold is unset.
	DefaultSlowQueryThreshold = 200 * time.Millisecond
	// DefaultMaxQueryLength is used when database.query.log.max is unset.
	DefaultMaxQueryLength = 1000
)

// Settings holds the statement tracking knobs read from database.query.
type Settings struct {
	slowQueryThreshold time.Duration
	maxQueryLength     int
	logQueryParameters bool
}

// Context bundles what TrackDBOperation needs besides the statement itself.
type Context struct {
	Logger   logger.Logger
	Vendor   string
	Settings Settings
}

// NewSettings reads cfg.Query. Non-positive values fall back to the defaults.
func NewSettings(cfg *config.DatabaseConfig) Settings {
	s := Settings{
		slowQueryThreshold: DefaultSlowQueryThreshold,
		maxQueryLength:     DefaultMaxQueryLength,
	}
	if cfg == nil {
		return s
	}

	q := cfg.Query
	if q.Slow.Threshold > 0 {
		s.slowQueryThreshold = q.Slow.Threshold
	}
	if q.Log.MaxLength > 0 {
		s.maxQueryLength = q.Log.MaxLength
	}
	s.logQueryParameters = q.Log.Parameters
	return s
}

// SlowQueryThreshold returns the duration above which a statement is logged as slow.
func (s Settings) SlowQueryThreshold() time.Duration { return s.slowQueryThreshold }

// MaxQueryLength returns the rune limit for logged SQL and arguments.
func (s Settings) MaxQueryLength() int { return s.maxQueryLength }

// LogQueryParameters reports whether bind arguments are logged.
func (s Settings) LogQueryParameters() bool { return s.logQueryParameters }
