package mocks

import (
	"context"
	"database/sql"

	"github.com/stretchr/testify/mock"

	"github.com/gaborage/sqldao/database/types"
)

// MockDatabase provides a testify-based mock implementation of database.Interface.
// It doubles as a dao.Source.
//
// Example usage:
//
//	conn := &mocks.MockConn{}
//	src := &mocks.MockDatabase{}
//	src.ExpectConn(conn, nil)
//
//	d := dao.NewDispatcher(src, logger.Nop())
type MockDatabase struct {
	mock.Mock
}

var _ types.Interface = (*MockDatabase)(nil)

// Conn implements types.Source
func (m *MockDatabase) Conn(ctx context.Context) (types.Conn, error) {
	arguments := m.Called(ctx)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(types.Conn), arguments.Error(1)
}

// Health implements types.Interface
func (m *MockDatabase) Health(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Stats implements types.Interface
func (m *MockDatabase) Stats() (map[string]any, error) {
	arguments := m.Called()
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(map[string]any), arguments.Error(1)
}

// Close implements types.Interface
func (m *MockDatabase) Close() error {
	return m.Called().Error(0)
}

// DatabaseType implements types.Interface
func (m *MockDatabase) DatabaseType() string {
	return m.Called().String(0)
}

// Helper methods for common testing scenarios

// ExpectConn sets up a connection borrow returning conn and err
func (m *MockDatabase) ExpectConn(conn types.Conn, err error) *mock.Call {
	if conn == nil {
		return m.On("Conn", mock.Anything).Return(nil, err)
	}
	return m.On("Conn", mock.Anything).Return(conn, err)
}

// ExpectHealthCheck sets up a health check expectation
func (m *MockDatabase) ExpectHealthCheck(healthy bool) *mock.Call {
	if healthy {
		return m.On("Health", mock.Anything).Return(nil)
	}
	return m.On("Health", mock.Anything).Return(sql.ErrConnDone)
}

// ExpectDatabaseType sets up a database type expectation
func (m *MockDatabase) ExpectDatabaseType(dbType string) *mock.Call {
	return m.On("DatabaseType").Return(dbType)
}

// ExpectStats sets up a stats expectation with the provided stats and error
func (m *MockDatabase) ExpectStats(stats map[string]any, err error) *mock.Call {
	return m.On("Stats").Return(stats, err)
}

// MockConn is a testify-based mock of a single borrowed connection.
type MockConn struct {
	mock.Mock
}

var _ types.Conn = (*MockConn)(nil)

// Prepare implements types.Conn
func (m *MockConn) Prepare(ctx context.Context, query string) (types.Statement, error) {
	arguments := m.Called(ctx, query)
	if arguments.Get(0) == nil {
		return nil, arguments.Error(1)
	}
	return arguments.Get(0).(types.Statement), arguments.Error(1)
}

// Close implements types.Conn
func (m *MockConn) Close() error {
	return m.Called().Error(0)
}

// ExpectPrepare sets up a prepare expectation for query
func (m *MockConn) ExpectPrepare(query string, stmt types.Statement, err error) *mock.Call {
	if stmt == nil {
		return m.On("Prepare", mock.Anything, query).Return(nil, err)
	}
	return m.On("Prepare", mock.Anything, query).Return(stmt, err)
}

// ExpectClose sets up a close expectation with the provided error
func (m *MockConn) ExpectClose(err error) *mock.Call {
	return m.On("Close").Return(err)
}
