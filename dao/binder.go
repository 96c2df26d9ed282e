package dao

import (
	"context"
	"database/sql"

	"github.com/gaborage/sqldao/database/types"
)

// boundStatement is a statement prepared on a borrowed connection together
// with the caller's positional arguments.
type boundStatement struct {
	stmt types.Statement
	args []any
}

// bindStatement prepares query on conn. Arguments are handed to the driver
// unconverted and in caller order; count and type mismatches surface when the
// statement runs.
func bindStatement(ctx context.Context, conn types.Conn, query string, args []any) (*boundStatement, error) {
	stmt, err := conn.Prepare(ctx, query)
	if err != nil {
		return nil, classifyExecError(err)
	}
	return &boundStatement{stmt: stmt, args: args}, nil
}

func (b *boundStatement) query(ctx context.Context) (*sql.Rows, error) {
	rows, err := b.stmt.Query(ctx, b.args...)
	if err != nil {
		return nil, classifyExecError(err)
	}
	return rows, nil
}

func (b *boundStatement) exec(ctx context.Context) (sql.Result, error) {
	res, err := b.stmt.Exec(ctx, b.args...)
	if err != nil {
		return nil, classifyExecError(err)
	}
	return res, nil
}

func (b *boundStatement) close() error {
	return b.stmt.Close()
}
