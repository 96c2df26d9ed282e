package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/sqldao/logger"
)

const (
	defaultOperation = "query"

	// Prefixes the wrappers put in front of the SQL text to name the step.
	opAcquire     = "ACQUIRE"
	opPrepare     = "PREPARE"
	opStmtQuery   = "STMT_QUERY"
	opStmtExec    = "STMT_EXEC"
	opSeparator   = ": "
	dbTracerName  = "sqldao/database"
	maxSpanSQLLen = 2000
)

// TrackDBOperation records one finished database step: it bumps the request
// counters in ctx, emits a client span and metrics, and logs the statement.
// Errors log at error level (sql.ErrNoRows at debug), statements slower than the
// threshold at warn, everything else at debug.
//
// rowsAffected is zero for reads. A nil tc or tc.Logger makes this a no-op.
func TrackDBOperation(ctx context.Context, tc *Context, query string, args []any, start time.Time, rowsAffected int64, err error) {
	if tc == nil || tc.Logger == nil {
		return
	}

	elapsed := time.Since(start)

	if ctx != nil {
		logger.IncrementDBCounter(ctx)
		logger.AddDBElapsed(ctx, elapsed.Nanoseconds())
		createDBSpan(ctx, tc, query, start, err)
		recordDBMetrics(ctx, tc, query, elapsed, rowsAffected, err)
	}

	fields := map[string]any{
		"vendor":      tc.Vendor,
		"duration_ms": elapsed.Milliseconds(),
		"duration_ns": elapsed.Nanoseconds(),
		"query":       TruncateString(query, tc.Settings.MaxQueryLength()),
	}
	if rowsAffected > 0 {
		fields["rows_affected"] = rowsAffected
	}
	if tc.Settings.LogQueryParameters() && len(args) > 0 {
		fields["args"] = SanitizeArgs(args, tc.Settings.MaxQueryLength())
	}
	log := tc.Logger.WithContext(ctx).WithFields(fields)

	switch {
	case err != nil && errors.Is(err, sql.ErrNoRows):
		log.Debug().Msg("Database operation returned no rows")
	case err != nil:
		log.Error().Err(err).Msg("Database operation error")
	case elapsed > tc.Settings.SlowQueryThreshold():
		log.Warn().Msgf("Slow database operation detected (%s)", elapsed)
	default:
		log.Debug().Msg("Database operation executed")
	}
}

// extractRowsAffected reads RowsAffected best-effort; failures count as zero.
func extractRowsAffected(result sql.Result, err error) int64 {
	if result == nil || err != nil {
		return 0
	}
	n, affErr := result.RowsAffected()
	if affErr != nil {
		return 0
	}
	return n
}

// TruncateString cuts value to maxLen runes, ending in "..." when maxLen > 3.
// maxLen <= 0 disables truncation.
func TruncateString(value string, maxLen int) string {
	if maxLen <= 0 {
		return value
	}
	r := []rune(value)
	if len(r) <= maxLen {
		return value
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// SanitizeArgs renders bind arguments for logging. Strings and formatted values
// are truncated to maxLen runes and byte slices become "<bytes len=N>".
func SanitizeArgs(args []any, maxLen int) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case nil:
			out[i] = nil
		case string:
			out[i] = TruncateString(v, maxLen)
		case []byte:
			out[i] = fmt.Sprintf("<bytes len=%d>", len(v))
		default:
			out[i] = TruncateString(fmt.Sprintf("%v", v), maxLen)
		}
	}
	return out
}

// createDBSpan emits a client span that starts at start and ends now.
func createDBSpan(ctx context.Context, tc *Context, query string, start time.Time, err error) {
	operation := extractDBOperation(query)

	_, span := otel.Tracer(dbTracerName).Start(ctx, "db."+operation,
		trace.WithTimestamp(start),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	defer span.End()

	attrs := []attribute.KeyValue{
		attribute.String("db.system", normalizeDBVendor(tc.Vendor)),
		semconv.DBQueryText(TruncateString(stripStep(query), maxSpanSQLLen)),
	}
	if operation != defaultOperation {
		attrs = append(attrs, semconv.DBOperationName(operation))
	}
	span.SetAttributes(attrs...)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// splitStep separates "STMT_EXEC: UPDATE ..." into its step and SQL parts.
func splitStep(query string) (step, sqlText string) {
	for _, s := range []string{opAcquire, opPrepare, opStmtQuery, opStmtExec} {
		if query == s {
			return s, ""
		}
		if rest, ok := strings.CutPrefix(query, s+opSeparator); ok {
			return s, rest
		}
	}
	return "", query
}

func stripStep(query string) string {
	_, sqlText := splitStep(query)
	return sqlText
}

// extractDBOperation names the operation: "acquire", "prepare", or the
// lowercase SQL verb for executed statements.
func extractDBOperation(query string) string {
	step, sqlText := splitStep(strings.TrimSpace(query))
	switch step {
	case opAcquire:
		return "acquire"
	case opPrepare:
		return "prepare"
	}

	parts := strings.Fields(sqlText)
	if len(parts) == 0 {
		return defaultOperation
	}
	switch verb := strings.ToLower(parts[0]); verb {
	case "select", "insert", "update", "delete", "create", "drop", "alter", "truncate", "with":
		return verb
	default:
		return defaultOperation
	}
}

// normalizeDBVendor maps vendor aliases onto the OTel db.system values.
func normalizeDBVendor(vendor string) string {
	switch v := strings.ToLower(vendor); v {
	case "postgres", "postgresql":
		return "postgresql"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return v
	}
}
