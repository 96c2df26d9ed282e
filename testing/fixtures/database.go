package fixtures

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/mock"

	"github.com/gaborage/sqldao/testing/mocks"
)

// DatabaseFixtures provides helper functions for creating pre-configured connection
// source mocks and SQL result builders for consistent testing.

// NewHealthyDatabase creates a mock source that reports the given vendor and passes
// health checks. Connection borrows must still be set up by the test.
func NewHealthyDatabase(vendor string) *mocks.MockDatabase {
	mockDB := &mocks.MockDatabase{}

	mockDB.ExpectHealthCheck(true)
	mockDB.ExpectDatabaseType(vendor)
	mockDB.ExpectStats(map[string]any{
		"open_connections": 1,
		"in_use":           0,
		"idle":             1,
	}, nil)

	return mockDB
}

// NewFailingDatabase creates a mock source whose health checks and connection
// borrows fail with err.
func NewFailingDatabase(err error) *mocks.MockDatabase {
	if err == nil {
		err = sql.ErrConnDone
	}

	mockDB := &mocks.MockDatabase{}
	mockDB.On("Health", mock.Anything).Return(err)
	mockDB.ExpectConn(nil, err)

	return mockDB
}

// NewQueryDatabase creates a mock source whose connections prepare query and
// return the given rows for any arguments. The rows can be read by a single
// call; every borrowed connection and statement accepts Close.
//
// Example:
//
//	src := fixtures.NewQueryDatabase(t, "SELECT id, name FROM items",
//	  []string{"id", "name"},
//	  [][]any{{1, "widget"}, {2, "gadget"}},
//	)
func NewQueryDatabase(t testing.TB, query string, columns []string, rows [][]any) *mocks.MockDatabase {
	t.Helper()

	stmt := &mocks.MockStatement{}
	stmt.ExpectQuery(nil, NewMockRows(t, columns, rows), nil)
	stmt.ExpectClose(nil)

	return newPreparedDatabase(query, stmt)
}

// NewExecDatabase creates a mock source whose connections prepare query and
// return result for any arguments.
func NewExecDatabase(query string, result sql.Result) *mocks.MockDatabase {
	stmt := &mocks.MockStatement{}
	stmt.ExpectExec(nil, result, nil)
	stmt.ExpectClose(nil)

	return newPreparedDatabase(query, stmt)
}

func newPreparedDatabase(query string, stmt *mocks.MockStatement) *mocks.MockDatabase {
	conn := &mocks.MockConn{}
	conn.ExpectPrepare(query, stmt, nil)
	conn.ExpectClose(nil)

	mockDB := &mocks.MockDatabase{}
	mockDB.ExpectConn(conn, nil)
	return mockDB
}

// SQL Result Builders

// NewMockRows creates sql.Rows for testing with the provided columns and data.
// The backing sqlmock connection is closed when the test ends.
//
// Example:
//
//	rows := fixtures.NewMockRows(t,
//	  []string{"id", "name", "email"},
//	  [][]any{
//	    {1, "John", "john@example.com"},
//	    {2, "Jane", "jane@example.com"},
//	  },
//	)
func NewMockRows(t testing.TB, columns []string, rows [][]any) *sql.Rows {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	sqlRows := sqlmock.NewRows(columns)
	for _, row := range rows {
		driverValues := make([]driver.Value, len(row))
		for i, val := range row {
			driverValues[i] = val
		}
		sqlRows.AddRow(driverValues...)
	}

	sqlMock.ExpectQuery(".*").WillReturnRows(sqlRows)

	result, err := db.QueryContext(context.Background(), "SELECT")
	if err != nil {
		t.Fatalf("sqlmock query: %v", err)
	}
	return result
}

// NewMockResult creates sql.Result for testing Exec operations.
//
// Example:
//
//	result := fixtures.NewMockResult(1, 5) // lastInsertId=1, rowsAffected=5
func NewMockResult(lastInsertID, rowsAffected int64) sql.Result {
	return &mockResult{
		lastInsertID: lastInsertID,
		rowsAffected: rowsAffected,
	}
}

// NewErrorResult creates sql.Result that returns errors for testing error scenarios.
func NewErrorResult(err error) sql.Result {
	return &mockResult{
		err: err,
	}
}

// mockResult implements sql.Result for testing
type mockResult struct {
	lastInsertID int64
	rowsAffected int64
	err          error
}

func (r *mockResult) LastInsertId() (int64, error) {
	return r.lastInsertID, r.err
}

func (r *mockResult) RowsAffected() (int64, error) {
	return r.rowsAffected, r.err
}
