package tracking

import (
	"context"
	"database/sql"
	"time"

	"github.com/gaborage/sqldao/database/types"
)

// Statement wraps a prepared types.Statement and tracks each execution under
// the SQL it was prepared from.
type Statement struct {
	stmt  types.Statement
	tc    *Context
	query string
}

// NewStatement wraps stmt. query is the SQL used in logs and spans.
func NewStatement(stmt types.Statement, tc *Context, query string) types.Statement {
	return &Statement{stmt: stmt, tc: tc, query: query}
}

// Query runs the statement and tracks the time until the cursor is returned.
func (s *Statement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := s.stmt.Query(ctx, args...)
	TrackDBOperation(ctx, s.tc, s.label(opStmtQuery), args, start, 0, err)
	return rows, err
}

// Exec runs the statement and tracks it with its affected row count.
func (s *Statement) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := s.stmt.Exec(ctx, args...)
	TrackDBOperation(ctx, s.tc, s.label(opStmtExec), args, start, extractRowsAffected(result, err), err)
	return result, err
}

// Close closes the underlying statement.
func (s *Statement) Close() error {
	return s.stmt.Close()
}

func (s *Statement) label(op string) string {
	if s.query == "" {
		return op
	}
	return op + opSeparator + s.query
}
