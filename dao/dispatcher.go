// Package dao turns DAO structs whose function fields carry SQL in struct tags
// into working database calls, and returns rows as string-keyed Row values.
//
// A Dispatcher holds one Descriptor per method, resolved once, and runs each
// call on its own connection borrowed from a Source:
//
//	type ItemDAO struct {
//		GetAll  func(ctx context.Context) ([]dao.Row, error)                 `dao:"query" sql:"SELECT id, name FROM items"`
//		GetByID func(ctx context.Context, id int64) (dao.Row, error)         `dao:"query" sql:"SELECT id, name FROM items WHERE id = ?"`
//		Add     func(ctx context.Context, name string) (int64, error)        `dao:"insert,key" sql:"INSERT INTO items(name) VALUES (?)"`
//		Remove  func(ctx context.Context, id int64) (int64, error)           `dao:"delete" sql:"DELETE FROM items WHERE id = ?"`
//	}
//
//	var items ItemDAO
//	_, err := dao.NewFactory(source, log).Bind(&items)
package dao

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gaborage/sqldao/database/types"
	"github.com/gaborage/sqldao/logger"
)

const tracerName = "sqldao/dao"

// Source yields one connection per call. database.Interface satisfies it.
type Source = types.Source

// Result is the outcome of one Invoke. Which accessor is meaningful depends on
// Shape.
type Result struct {
	shape    Shape
	rows     []Row
	affected int64
	key      int64
}

// Shape returns the shape the result was produced for.
func (r Result) Shape() Shape { return r.shape }

// Rows returns all rows of a RowList query. It is never nil on success.
func (r Result) Rows() []Row { return r.rows }

// Row returns the first row of a SingleRow query.
func (r Result) Row() Row {
	if len(r.rows) == 0 {
		return nil
	}
	return r.rows[0]
}

// RowsAffected returns the affected row count of a write.
func (r Result) RowsAffected() int64 { return r.affected }

// GeneratedKey returns the key produced by an insert declared with a key.
func (r Result) GeneratedKey() int64 { return r.key }

// Dispatcher routes method calls to the read or write path. The table is
// written by Register and read concurrently by Invoke.
type Dispatcher struct {
	source Source
	log    logger.Logger

	mu    sync.RWMutex
	table map[string]Descriptor
}

// NewDispatcher returns an empty dispatcher running calls against source.
func NewDispatcher(source Source, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		source: source,
		log:    log,
		table:  make(map[string]Descriptor),
	}
}

// Register validates desc and stores it under method, replacing any previous
// entry. Shape support is checked per call, not here.
func (d *Dispatcher) Register(method string, desc Descriptor) error {
	if method == "" {
		return fail(ErrInvalidDescriptor, errors.New("empty method name"))
	}
	if err := desc.Validate(); err != nil {
		return withMethod(method, err)
	}

	d.mu.Lock()
	d.table[method] = desc
	d.mu.Unlock()
	return nil
}

// Descriptor returns the descriptor registered under method.
func (d *Dispatcher) Descriptor(method string) (Descriptor, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	desc, ok := d.table[method]
	return desc, ok
}

// Methods returns the registered method names, sorted.
func (d *Dispatcher) Methods() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.table))
	for name := range d.table {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Invoke runs method with positional args on a freshly borrowed connection and
// releases it before returning. Every failure is an *Error; nothing is retried.
func (d *Dispatcher) Invoke(ctx context.Context, method string, args ...any) (Result, error) {
	desc, ok := d.Descriptor(method)
	if !ok {
		return Result{}, &Error{Method: method, Kind: ErrUnknownMethod}
	}
	if !desc.Supports() {
		return Result{}, &Error{Method: method, Kind: ErrUnsupportedReturnType,
			Err: fmt.Errorf("%s cannot produce %s", desc.Kind, desc.Shape)}
	}

	callID := uuid.NewString()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "dao."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("dao.method", method),
			attribute.String("dao.kind", desc.Kind.String()),
			attribute.String("dao.shape", desc.Shape.String()),
			attribute.String("dao.call_id", callID),
		))
	defer span.End()

	start := time.Now()
	res, err := d.run(ctx, desc, args)
	elapsed := time.Since(start)

	ev := d.log.WithContext(ctx).Debug().
		Str("call_id", callID).
		Str("method", method).
		Str("kind", desc.Kind.String()).
		Str("shape", desc.Shape.String()).
		Str("sql", desc.SQL).
		Int("args", len(args)).
		Dur("duration", elapsed)

	if err != nil {
		err = withMethod(method, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		ev.Err(err).Msg("DAO call failed")
		return Result{}, err
	}

	if desc.Kind == Query {
		span.SetAttributes(attribute.Int("dao.rows", len(res.rows)))
	} else {
		span.SetAttributes(attribute.Int64("dao.rows_affected", res.affected))
	}
	ev.Msg("DAO call executed")
	return res, nil
}

func (d *Dispatcher) run(ctx context.Context, desc Descriptor, args []any) (Result, error) {
	conn, err := d.source.Conn(ctx)
	if err != nil {
		return Result{}, fail(ErrConnectionAcquisition, err)
	}
	defer d.release(ctx, "connection", conn.Close)

	stmt, err := bindStatement(ctx, conn, desc.SQL, args)
	if err != nil {
		return Result{}, err
	}
	defer d.release(ctx, "statement", stmt.close)

	if desc.Kind == Query {
		return d.runQuery(ctx, stmt, desc)
	}

	m, err := execMutation(ctx, stmt, desc)
	if err != nil {
		return Result{}, err
	}
	return Result{shape: desc.Shape, affected: m.affected, key: m.key}, nil
}

func (d *Dispatcher) runQuery(ctx context.Context, stmt *boundStatement, desc Descriptor) (Result, error) {
	rows, err := stmt.query(ctx)
	if err != nil {
		return Result{}, err
	}
	list, err := materialize(rows)
	if err != nil {
		return Result{}, err
	}

	if desc.Shape == SingleRow {
		if len(list) == 0 {
			return Result{}, fail(ErrEmptyResult, nil)
		}
		list = list[:1]
	}
	return Result{shape: desc.Shape, rows: list}, nil
}

// release closes a per-call resource. Close failures cannot change the call's
// outcome and are only logged.
func (d *Dispatcher) release(ctx context.Context, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		d.log.WithContext(ctx).Warn().Err(err).Msgf("Failed to close %s", what)
	}
}
