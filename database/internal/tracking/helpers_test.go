package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/gaborage/sqldao/logger"
)

// SQL shared by the tracking tests.
const (
	TestQuerySelectItems      = "SELECT id, name FROM items"
	TestQuerySelectItemByID   = "SELECT id, name FROM items WHERE id = ?"
	TestQueryInsertItem       = "INSERT INTO items (name, price) VALUES (?, ?)"
	TestQueryUpdateItemPrice  = "UPDATE items SET price = ? WHERE id = ?"
	TestQueryDeleteItemByID   = "DELETE FROM items WHERE id = ?"
	TestQuerySelectSchemaItem = `SELECT * FROM "shop"."items"`
)

const (
	levelDebug = "debug"
	levelError = "error"
	levelInfo  = "info"
	levelWarn  = "warn"
)

type eventRecord struct {
	Level  string
	Msg    string
	Err    error
	Fields map[string]any
}

type recordingSink struct {
	mu     sync.Mutex
	events []*eventRecord
}

// recordingLogger captures log events, including fields added via WithFields.
type recordingLogger struct {
	sink   *recordingSink
	fields map[string]any
}

type recordingEvent struct {
	record *eventRecord
}

func newRecordingLogger() *recordingLogger {
	return &recordingLogger{sink: &recordingSink{}, fields: map[string]any{}}
}

func (l *recordingLogger) newEvent(level string) logger.LogEvent {
	rec := &eventRecord{Level: level, Fields: make(map[string]any, len(l.fields))}
	for k, v := range l.fields {
		rec.Fields[k] = v
	}
	l.sink.mu.Lock()
	l.sink.events = append(l.sink.events, rec)
	l.sink.mu.Unlock()
	return &recordingEvent{record: rec}
}

func (l *recordingLogger) Info() logger.LogEvent  { return l.newEvent(levelInfo) }
func (l *recordingLogger) Error() logger.LogEvent { return l.newEvent(levelError) }
func (l *recordingLogger) Debug() logger.LogEvent { return l.newEvent(levelDebug) }
func (l *recordingLogger) Warn() logger.LogEvent  { return l.newEvent(levelWarn) }

func (l *recordingLogger) WithContext(_ any) logger.Logger { return l }

func (l *recordingLogger) WithFields(fields map[string]any) logger.Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &recordingLogger{sink: l.sink, fields: merged}
}

func (l *recordingLogger) events() []*eventRecord {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return append([]*eventRecord(nil), l.sink.events...)
}

func (e *recordingEvent) Msg(msg string) { e.record.Msg = msg }
func (e *recordingEvent) Msgf(format string, args ...any) {
	e.record.Msg = format
	if len(args) > 0 {
		e.record.Fields["msg_args"] = args
	}
}
func (e *recordingEvent) Err(err error) logger.LogEvent { e.record.Err = err; return e }
func (e *recordingEvent) Str(key, value string) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}
func (e *recordingEvent) Int(key string, value int) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}
func (e *recordingEvent) Int64(key string, value int64) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}
func (e *recordingEvent) Dur(key string, d time.Duration) logger.LogEvent {
	e.record.Fields[key] = d
	return e
}
func (e *recordingEvent) Interface(key string, value any) logger.LogEvent {
	e.record.Fields[key] = value
	return e
}

// setupTestTracerProvider installs an in-memory tracer provider for the test.
func setupTestTracerProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	original := otel.GetTracerProvider()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(original)
	})
	return exporter
}

// setupTestMeterProvider installs a manual-reader meter provider and resets the
// lazily created instruments so they bind to it.
func setupTestMeterProvider(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()

	original := otel.GetMeterProvider()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	meterOnce = sync.Once{}
	dbMetrics = nil

	t.Cleanup(func() {
		_ = mp.Shutdown(context.Background())
		otel.SetMeterProvider(original)
		meterOnce = sync.Once{}
		dbMetrics = nil
	})
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumValue(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "expected Sum[int64], got %T", m.Data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}
