package dao

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/sqldao/database"
	"github.com/gaborage/sqldao/logger"
)

type mockItemDAO struct {
	GetAll   func(ctx context.Context) ([]Row, error)                        `dao:"query" sql:"SELECT id, name FROM items"`
	GetByID  func(ctx context.Context, id int64) (Row, error)                `dao:"query" sql:"SELECT id, name FROM items WHERE id = ?"`
	Add      func(ctx context.Context, name string) (int64, error)           `dao:"insert,key" sql:"INSERT INTO items(name) VALUES (?)"`
	Rename   func(ctx context.Context, name string, id int64) (int64, error) `dao:"update" sql:"UPDATE items SET name = ? WHERE id = ?"`
	RemoveIn func(ctx context.Context, ids ...any) (int64, error)            `dao:"delete" sql:"DELETE FROM items WHERE id IN (?, ?)"`

	Untagged func()
	Label    string
}

func newMockFactory(t *testing.T) (*Factory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	src := database.FromDB(db, database.SQLite, logger.Nop())
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = src.Close()
	})
	return NewFactory(src, logger.Nop()), mock
}

func TestBindResolvesDescriptorsOnce(t *testing.T) {
	f, _ := newMockFactory(t)

	var items mockItemDAO
	d, err := f.Bind(&items)
	require.NoError(t, err)

	assert.Equal(t, []string{"Add", "GetAll", "GetByID", "RemoveIn", "Rename"}, d.Methods())
	assert.NotNil(t, items.GetAll)
	assert.NotNil(t, items.RemoveIn)
	assert.Nil(t, items.Untagged)

	shapes := map[string]Shape{
		"GetAll":   RowList,
		"GetByID":  SingleRow,
		"Add":      GeneratedKey,
		"Rename":   RowCount,
		"RemoveIn": RowCount,
	}
	for method, shape := range shapes {
		desc, ok := d.Descriptor(method)
		require.True(t, ok, method)
		assert.Equal(t, shape, desc.Shape, method)
	}

	add, _ := d.Descriptor("Add")
	assert.True(t, add.GeneratedKey)
	assert.Equal(t, Insert, add.Kind)
}

func TestBoundFunctionsRouteThroughDispatcher(t *testing.T) {
	f, mock := newMockFactory(t)

	var items mockItemDAO
	_, err := f.Bind(&items)
	require.NoError(t, err)

	ctx := context.Background()

	mock.ExpectPrepare("INSERT INTO items(name) VALUES (?)").ExpectExec().WithArgs("widget").
		WillReturnResult(sqlmock.NewResult(5, 1))
	id, err := items.Add(ctx, "widget")
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)

	mock.ExpectPrepare("SELECT id, name FROM items WHERE id = ?").ExpectQuery().WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(int64(5), "widget"))
	row, err := items.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, Row{"id": Int(5), "name": String("widget")}, row)

	mock.ExpectPrepare("UPDATE items SET name = ? WHERE id = ?").ExpectExec().WithArgs("gadget", int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err := items.Rename(ctx, "gadget", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mock.ExpectPrepare("DELETE FROM items WHERE id IN (?, ?)").ExpectExec().WithArgs(int64(5), int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	n, err = items.RemoveIn(ctx, int64(5), int64(6))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	mock.ExpectPrepare("SELECT id, name FROM items").ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	//nolint:staticcheck // a nil context falls back to context.Background
	rows, err := items.GetAll(nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoundFunctionReturnsZeroValueOnError(t *testing.T) {
	f, mock := newMockFactory(t)

	var items mockItemDAO
	_, err := f.Bind(&items)
	require.NoError(t, err)

	mock.ExpectPrepare("SELECT id, name FROM items WHERE id = ?").ExpectQuery().WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	row, err := items.GetByID(context.Background(), 9)
	require.ErrorIs(t, err, ErrEmptyResult)
	assert.Nil(t, row)

	var de *Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "GetByID", de.Method)
}

type badShapeDAO struct {
	Names func(ctx context.Context) ([]string, error) `dao:"query" sql:"SELECT name FROM items"`
}

type countQueryDAO struct {
	Count func(ctx context.Context) (int64, error) `dao:"query" sql:"SELECT COUNT(*) FROM items"`
}

type keyedRowDAO struct {
	Add func(ctx context.Context, name string) (Row, error) `dao:"insert,key" sql:"INSERT INTO items(name) VALUES (?)"`
}

type noContextDAO struct {
	GetAll func() ([]Row, error) `dao:"query" sql:"SELECT id FROM items"`
}

type singleResultDAO struct {
	GetAll func(ctx context.Context) []Row `dao:"query" sql:"SELECT id FROM items"`
}

type notFuncDAO struct {
	GetAll string `dao:"query" sql:"SELECT id FROM items"`
}

type unexportedDAO struct {
	getAll func(ctx context.Context) ([]Row, error) `dao:"query" sql:"SELECT id FROM items"`
}

type missingSQLDAO struct {
	GetAll func(ctx context.Context) ([]Row, error) `dao:"query"`
}

type badKindDAO struct {
	Merge func(ctx context.Context) (int64, error) `dao:"merge" sql:"MERGE INTO items"`
}

func TestBindRejectsInvalidTargets(t *testing.T) {
	f, _ := newMockFactory(t)

	tests := []struct {
		name   string
		target any
		kind   error
	}{
		{"nil", nil, ErrInvalidDescriptor},
		{"non_pointer", mockItemDAO{}, ErrInvalidDescriptor},
		{"nil_pointer", (*mockItemDAO)(nil), ErrInvalidDescriptor},
		{"pointer_to_non_struct", new(int), ErrInvalidDescriptor},
		{"unsupported_query_result", &badShapeDAO{}, ErrUnsupportedReturnType},
		{"count_on_query", &countQueryDAO{}, ErrUnsupportedReturnType},
		{"row_on_keyed_insert", &keyedRowDAO{}, ErrUnsupportedReturnType},
		{"missing_context", &noContextDAO{}, ErrInvalidDescriptor},
		{"missing_error_result", &singleResultDAO{}, ErrUnsupportedReturnType},
		{"not_a_func", &notFuncDAO{}, ErrInvalidDescriptor},
		{"unexported_field", &unexportedDAO{}, ErrInvalidDescriptor},
		{"missing_sql", &missingSQLDAO{}, ErrInvalidDescriptor},
		{"unknown_kind", &badKindDAO{}, ErrInvalidDescriptor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.Bind(tt.target)
			assert.ErrorIs(t, err, tt.kind)
			assert.Nil(t, d)
		})
	}
}

func TestBindLeavesFieldsUnsetOnFailure(t *testing.T) {
	f, _ := newMockFactory(t)

	var target struct {
		GetAll func(ctx context.Context) ([]Row, error)    `dao:"query" sql:"SELECT id FROM items"`
		Names  func(ctx context.Context) ([]string, error) `dao:"query" sql:"SELECT name FROM items"`
	}
	_, err := f.Bind(&target)
	require.Error(t, err)
	assert.Nil(t, target.GetAll)
}
