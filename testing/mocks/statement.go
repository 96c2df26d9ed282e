package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/sqldao/database/types"
)

// MockStatement provides a testify-based mock implementation of the database Statement interface.
// Arguments are recorded as a single []any so expectations can match the whole list.
//
// Example usage:
//
//	mockStmt := &mocks.MockStatement{}
//	mockStmt.ExpectExec([]any{"widget"}, sqlmock.NewResult(1, 1), nil)
//	mockStmt.ExpectClose(nil)
type MockStatement struct {
	mock.Mock
}

var _ types.Statement = (*MockStatement)(nil)

// Query implements types.Statement
func (m *MockStatement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	arguments := m.Called(ctx, args)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(*sql.Rows), arguments.Error(1)
}

// Exec implements types.Statement
func (m *MockStatement) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	arguments := m.Called(ctx, args)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(sql.Result), arguments.Error(1)
}

// Close implements types.Statement
func (m *MockStatement) Close() error {
	return m.Called().Error(0)
}

// Helper methods for common testing scenarios

// ExpectQuery sets up a query expectation. A nil args matches any argument list.
func (m *MockStatement) ExpectQuery(args []any, rows *sql.Rows, err error) *mock.Call {
	if rows == nil {
		return m.On("Query", mock.Anything, argsMatcher(args)).Return(nil, err)
	}
	return m.On("Query", mock.Anything, argsMatcher(args)).Return(rows, err)
}

// ExpectExec sets up an exec expectation. A nil args matches any argument list.
func (m *MockStatement) ExpectExec(args []any, result sql.Result, err error) *mock.Call {
	if result == nil {
		return m.On("Exec", mock.Anything, argsMatcher(args)).Return(nil, err)
	}
	return m.On("Exec", mock.Anything, argsMatcher(args)).Return(result, err)
}

// ExpectClose sets up a close expectation with the provided error
func (m *MockStatement) ExpectClose(err error) *mock.Call {
	return m.On("Close").Return(err)
}

func argsMatcher(args []any) any {
	if args == nil {
		return mock.Anything
	}
	return args
}
