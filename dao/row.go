package dao

import (
	"database/sql"
	"maps"
	"slices"
	"strings"
)

// Row is one result record keyed by column name. Column order is not kept and
// duplicate column names resolve to the last one read.
type Row map[string]Value

// Columns returns the column names in sorted order.
func (r Row) Columns() []string {
	return slices.Sorted(maps.Keys(r))
}

// Get returns the named column and whether it is present.
func (r Row) Get(column string) (Value, bool) {
	v, ok := r[column]
	return v, ok
}

// Map returns the row as plain Go values.
func (r Row) Map() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v.Interface()
	}
	return out
}

// textTypes are DatabaseTypeName values whose []byte payload is character data.
var textTypes = map[string]bool{
	"CHAR": true, "VARCHAR": true, "VARCHAR2": true, "NCHAR": true, "NVARCHAR": true,
	"NVARCHAR2": true, "TEXT": true, "CLOB": true, "NCLOB": true, "BPCHAR": true,
	"NAME": true, "CITEXT": true, "UUID": true, "JSON": true, "JSONB": true, "XML": true,
	"NUMERIC": true, "DECIMAL": true, "LONG": true,
}

func isTextType(name string) bool {
	name = strings.ToUpper(strings.TrimSpace(name))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	return textTypes[name]
}

// materialize drains rows into a non-nil slice and closes them. Any scan,
// conversion or cursor error discards the partial result.
func materialize(rows *sql.Rows) ([]Row, error) {
	_, out, err := drain(rows)
	return out, err
}

// drain is materialize that also reports the cursor's column names in order.
func drain(rows *sql.Rows) ([]string, []Row, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fail(ErrQueryExecution, err)
	}

	text := make([]bool, len(columns))
	if types, err := rows.ColumnTypes(); err == nil {
		for i, ct := range types {
			text[i] = isTextType(ct.DatabaseTypeName())
		}
	}

	out := make([]Row, 0)
	cells := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range cells {
		dest[i] = &cells[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fail(ErrQueryExecution, err)
		}
		row := make(Row, len(columns))
		for i, name := range columns {
			v, err := ValueOf(cells[i], text[i])
			if err != nil {
				return nil, nil, fail(ErrQueryExecution, err)
			}
			row[name] = v
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fail(ErrQueryExecution, err)
	}
	return columns, out, nil
}
