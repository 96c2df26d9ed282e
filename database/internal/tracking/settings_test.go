package tracking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gaborage/sqldao/config"
)

func TestNewSettingsDefaultsWhenConfigNil(t *testing.T) {
	s := NewSettings(nil)
	assert.Equal(t, DefaultSlowQueryThreshold, s.SlowQueryThreshold())
	assert.Equal(t, DefaultMaxQueryLength, s.MaxQueryLength())
	assert.False(t, s.LogQueryParameters())
}

func TestNewSettingsUsesPositiveOverrides(t *testing.T) {
	cfg := &config.DatabaseConfig{Query: config.QueryConfig{
		Slow: config.SlowQueryConfig{Threshold: time.Second},
		Log:  config.QueryLogConfig{Parameters: true, MaxLength: 64},
	}}

	s := NewSettings(cfg)
	assert.Equal(t, time.Second, s.SlowQueryThreshold())
	assert.Equal(t, 64, s.MaxQueryLength())
	assert.True(t, s.LogQueryParameters())
}

func TestNewSettingsIgnoresNonPositiveOverrides(t *testing.T) {
	cfg := &config.DatabaseConfig{Query: config.QueryConfig{
		Slow: config.SlowQueryConfig{Threshold: -time.Second},
		Log:  config.QueryLogConfig{MaxLength: 0},
	}}

	s := NewSettings(cfg)
	assert.Equal(t, DefaultSlowQueryThreshold, s.SlowQueryThreshold())
	assert.Equal(t, DefaultMaxQueryLength, s.MaxQueryLength())
}
