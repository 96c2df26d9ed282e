package logger

import (
	"context"
	"sync/atomic"
)

type contextKey string

const (
	dbCounterKey contextKey = "db_operation_counter"
	dbElapsedKey contextKey = "db_elapsed_nanos"
)

// WithDBCounter returns a context that accumulates the number of database operations
// and their total elapsed time. Useful for per-request accounting by callers.
func WithDBCounter(ctx context.Context) context.Context {
	var counter, elapsed int64
	ctx = context.WithValue(ctx, dbCounterKey, &counter)
	return context.WithValue(ctx, dbElapsedKey, &elapsed)
}

// IncrementDBCounter bumps the operation counter when ctx carries one.
func IncrementDBCounter(ctx context.Context) {
	if counter, ok := ctx.Value(dbCounterKey).(*int64); ok && counter != nil {
		atomic.AddInt64(counter, 1)
	}
}

// GetDBCounter returns the number of operations recorded in ctx.
func GetDBCounter(ctx context.Context) int64 {
	if counter, ok := ctx.Value(dbCounterKey).(*int64); ok && counter != nil {
		return atomic.LoadInt64(counter)
	}
	return 0
}

// AddDBElapsed adds nanos to the elapsed total in ctx.
func AddDBElapsed(ctx context.Context, nanos int64) {
	if elapsed, ok := ctx.Value(dbElapsedKey).(*int64); ok && elapsed != nil {
		atomic.AddInt64(elapsed, nanos)
	}
}

// GetDBElapsed returns the elapsed total in nanoseconds.
func GetDBElapsed(ctx context.Context) int64 {
	if elapsed, ok := ctx.Value(dbElapsedKey).(*int64); ok && elapsed != nil {
		return atomic.LoadInt64(elapsed)
	}
	return 0
}
