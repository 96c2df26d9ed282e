package tracking

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	dbMeterName = "sqldao/database"

	metricDBCalls      = "db.client.calls"
	metricDBDuration   = "db.client.operation.duration"
	metricRowsAffected = "db.rows.affected"
	metricPoolInUse    = "db.client.connection.pool.in_use"
	metricPoolIdle     = "db.client.connection.pool.idle"
	metricPoolMax      = "db.client.connection.pool.max"

	attrDBSystem    = "db.system"
	attrDBOperation = "db.operation.name"
	attrDBTable     = "db.sql.table"
)

// instruments are created lazily from the global meter provider. Tests reset
// meterOnce after installing their own provider.
type instruments struct {
	meter    metric.Meter
	calls    metric.Int64Counter
	duration metric.Float64Histogram
	rows     metric.Int64Counter
}

var (
	meterOnce sync.Once
	dbMetrics *instruments
)

func getDBMetrics() *instruments {
	meterOnce.Do(func() {
		m := otel.Meter(dbMeterName)
		inst := &instruments{meter: m}
		// Instrument creation only fails on invalid names; a nil instrument is skipped.
		inst.calls, _ = m.Int64Counter(metricDBCalls,
			metric.WithDescription("Number of database client calls"))
		inst.duration, _ = m.Float64Histogram(metricDBDuration,
			metric.WithDescription("Duration of database operations"),
			metric.WithUnit("ms"))
		inst.rows, _ = m.Int64Counter(metricRowsAffected,
			metric.WithDescription("Rows affected by database writes"))
		dbMetrics = inst
	})
	return dbMetrics
}

// recordDBMetrics adds one call, its duration and any affected rows.
// sql.ErrNoRows does not count as an error.
func recordDBMetrics(ctx context.Context, tc *Context, query string, elapsed time.Duration, rowsAffected int64, err error) {
	inst := getDBMetrics()
	isError := err != nil && !errors.Is(err, sql.ErrNoRows)

	attrs := metric.WithAttributes(
		attribute.String(attrDBSystem, normalizeDBVendor(tc.Vendor)),
		attribute.String(attrDBOperation, extractDBOperation(query)),
		attribute.String(attrDBTable, extractTableName(query)),
	)

	if inst.calls != nil {
		inst.calls.Add(ctx, 1, attrs, metric.WithAttributes(attribute.Bool("error", isError)))
	}
	if inst.duration != nil {
		inst.duration.Record(ctx, float64(elapsed.Nanoseconds())/1e6, attrs)
	}
	if inst.rows != nil && rowsAffected > 0 && !isError {
		inst.rows.Add(ctx, rowsAffected, attrs)
	}
}

const (
	ident     = "[`\"]?(?:\\w+[`\"]?\\.[`\"]?)?(\\w+)[`\"]?"
	unknownTB = "unknown"
)

var tableRegexes = map[string]*regexp.Regexp{
	"select": regexp.MustCompile(`(?i)\bFROM\s+` + ident),
	"insert": regexp.MustCompile(`(?i)^INSERT\s+INTO\s+` + ident),
	"update": regexp.MustCompile(`(?i)^UPDATE\s+` + ident),
	"delete": regexp.MustCompile(`(?i)^DELETE\s+FROM\s+` + ident),
}

// extractTableName returns the lowercase primary table of a DML statement, or
// "unknown". For joins the first table wins. Schema qualifiers are dropped.
func extractTableName(query string) string {
	sqlText := strings.TrimSpace(stripStep(strings.TrimSpace(query)))
	fields := strings.Fields(sqlText)
	if len(fields) == 0 {
		return unknownTB
	}
	re, ok := tableRegexes[strings.ToLower(fields[0])]
	if !ok {
		return unknownTB
	}
	if m := re.FindStringSubmatch(sqlText); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return unknownTB
}

// StatsSource is anything reporting sqldb-style pool statistics.
type StatsSource interface {
	Stats() (map[string]any, error)
}

func statInt(stats map[string]any, key string) int64 {
	switch v := stats[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case int32:
		return int64(v)
	default:
		return 0
	}
}

// RegisterConnectionPoolMetrics exposes pool in-use, idle and max gauges for
// src. The returned func unregisters the callback and is always safe to call.
func RegisterConnectionPoolMetrics(src StatsSource, vendor string) func() {
	noop := func() {}
	meter := getDBMetrics().meter

	inUse, err1 := meter.Int64ObservableGauge(metricPoolInUse,
		metric.WithDescription("Database connections currently in use"))
	idle, err2 := meter.Int64ObservableGauge(metricPoolIdle,
		metric.WithDescription("Idle database connections"))
	maxOpen, err3 := meter.Int64ObservableGauge(metricPoolMax,
		metric.WithDescription("Maximum open database connections"))
	if err := errors.Join(err1, err2, err3); err != nil {
		return noop
	}

	attrs := metric.WithAttributes(attribute.String(attrDBSystem, normalizeDBVendor(vendor)))
	reg, err := meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats, err := src.Stats()
		if err != nil {
			return nil
		}
		o.ObserveInt64(inUse, statInt(stats, "in_use"), attrs)
		o.ObserveInt64(idle, statInt(stats, "idle"), attrs)
		o.ObserveInt64(maxOpen, statInt(stats, "max_open_connections"), attrs)
		return nil
	}, inUse, idle, maxOpen)
	if err != nil {
		return noop
	}

	return func() { _ = reg.Unregister() }
}
