package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/sqldao/logger"
)

func TestCountParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"none", "SELECT 1", 0},
		{"positional", "UPDATE items SET name = ? WHERE name = ?", 2},
		{"numbered", "SELECT ?2, ?1", 2},
		{"numbered then positional", "SELECT ?3, ?", 4},
		{"named reused", "SELECT :id, @name, :id, $name", 3},
		{"dollar ordinals", "SELECT $1, $2", 2},
		{"string literal", "SELECT 'what?', ? FROM t WHERE a = 'it''s :x'", 1},
		{"quoted identifiers", `SELECT "col?", [odd?], ` + "`x:y`" + `, ? FROM t`, 1},
		{"line comment", "SELECT ? -- and ?\nFROM t", 1},
		{"block comment", "SELECT /* ? :x */ ?", 1},
		{"unterminated comment", "SELECT ? /* ?", 1},
		{"quoted colon", "SELECT time(':') , ?", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, countParams(tt.query))
		})
	}
}

func TestPreparedStatementRejectsWrongArgumentCount(t *testing.T) {
	src, err := NewConnection(memoryConfig(), logger.Nop())
	require.NoError(t, err)
	defer src.Close()

	ctx := context.Background()
	conn, err := src.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()

	st, err := conn.Prepare(ctx, "SELECT ? AS a")
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Query(ctx, 1, 2)
	assert.EqualError(t, err, "sql: expected 1 arguments, got 2")

	_, err = st.Exec(ctx)
	assert.EqualError(t, err, "sql: expected 1 arguments, got 0")

	rows, err := st.Query(ctx, 1)
	require.NoError(t, err)
	defer rows.Close()
	require.True(t, rows.Next())
	var a int64
	require.NoError(t, rows.Scan(&a))
	assert.Equal(t, int64(1), a)
}
