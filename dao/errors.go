package dao

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by a Dispatcher or a bound DAO function is
// an *Error whose Kind is one of these, so callers test with errors.Is.
var (
	// ErrConnectionAcquisition means the Source could not yield a connection.
	ErrConnectionAcquisition = errors.New("connection acquisition failed")
	// ErrStatementBinding means the arguments did not fit the SQL placeholders,
	// by count or by type, as reported by the driver.
	ErrStatementBinding = errors.New("statement binding failed")
	// ErrQueryExecution covers prepare, execute and cursor failures.
	ErrQueryExecution = errors.New("query execution failed")
	// ErrUnsupportedReturnType means the declared result is not a supported shape.
	ErrUnsupportedReturnType = errors.New("unsupported return type")
	// ErrGeneratedKeyUnavailable means an insert asked for a generated key and
	// the driver produced none.
	ErrGeneratedKeyUnavailable = errors.New("generated key unavailable")
	// ErrEmptyResult is returned by single-row queries that match nothing.
	ErrEmptyResult = errors.New("empty result")
	// ErrInvalidDescriptor means a descriptor or DAO struct tag is malformed.
	ErrInvalidDescriptor = errors.New("invalid descriptor")
	// ErrUnknownMethod means Invoke was called with an unregistered method name.
	ErrUnknownMethod = errors.New("unknown method")
)

// Error is a failed DAO call. Is matches Kind; Unwrap yields the driver cause.
type Error struct {
	Method string
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("dao: ")
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// withMethod stamps method onto err when it is an *Error without one.
func withMethod(method string, err error) error {
	var e *Error
	if errors.As(err, &e) && e.Method == "" {
		e.Method = method
		return e
	}
	if e == nil {
		return &Error{Method: method, Kind: ErrQueryExecution, Err: err}
	}
	return err
}

// bindingMarkers are fragments of the messages database/sql and the supported
// drivers produce when arguments do not fit the placeholders.
var bindingMarkers = []string{
	"sql: expected ",              // database/sql argument count check
	"sql: converting argument",    // database/sql type conversion
	"missing argument with index", // modernc sqlite, too few arguments
	"bind message supplies",       // PostgreSQL server, count mismatch
	"failed to encode args",       // pgx, type mismatch
	"ORA-01008",                   // Oracle, not all variables bound
	"ORA-01036",                   // Oracle, illegal variable name/number
}

// classifyExecError maps an execute-time error to ErrStatementBinding or ErrQueryExecution.
func classifyExecError(err error) *Error {
	msg := err.Error()
	for _, m := range bindingMarkers {
		if strings.Contains(msg, m) {
			return fail(ErrStatementBinding, err)
		}
	}
	return fail(ErrQueryExecution, err)
}
