package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gaborage/sqldao/database/types"
)

// The modernc driver reports NumInput as -1, so database/sql never checks
// argument counts and extra arguments are silently dropped. These wrappers
// count the placeholders at prepare time and enforce the count on every call.

// Conn borrows a connection whose prepared statements check their argument count.
func (c *Connection) Conn(ctx context.Context) (types.Conn, error) {
	conn, err := c.Pool.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &countingConn{Conn: conn}, nil
}

type countingConn struct {
	types.Conn
}

func (c *countingConn) Prepare(ctx context.Context, query string) (types.Statement, error) {
	stmt, err := c.Conn.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}
	return &countingStatement{Statement: stmt, params: countParams(query)}, nil
}

type countingStatement struct {
	types.Statement
	params int
}

// checkArgs mirrors the database/sql message so callers classify it the same way.
func (s *countingStatement) checkArgs(args []any) error {
	if len(args) != s.params {
		return fmt.Errorf("sql: expected %d arguments, got %d", s.params, len(args))
	}
	return nil
}

func (s *countingStatement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, err
	}
	return s.Statement.Query(ctx, args...)
}

func (s *countingStatement) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	if err := s.checkArgs(args); err != nil {
		return nil, err
	}
	return s.Statement.Exec(ctx, args...)
}

// countParams returns the number of parameters SQLite allocates for query:
// the largest index used, where "?" takes the next index, "?NNN" sets it and
// each distinct ":name", "@name" or "$name" takes a new one. Quoted strings,
// quoted identifiers and comments are skipped.
func countParams(query string) int {
	maxIndex := 0
	named := map[string]struct{}{}

	for i := 0; i < len(query); i++ {
		switch c := query[i]; c {
		case '\'', '"', '`':
			i = skipQuoted(query, i, c)
		case '[':
			i = skipQuoted(query, i, ']')
		case '-':
			if i+1 < len(query) && query[i+1] == '-' {
				for i < len(query) && query[i] != '\n' {
					i++
				}
			}
		case '/':
			if i+1 < len(query) && query[i+1] == '*' {
				end := strings.Index(query[i+2:], "*/")
				if end < 0 {
					return maxIndex
				}
				i += end + 3
			}
		case '?':
			j := i + 1
			n := 0
			for j < len(query) && isDigit(query[j]) {
				n = n*10 + int(query[j]-'0')
				j++
			}
			if j == i+1 {
				maxIndex++
			} else if n > maxIndex {
				maxIndex = n
			}
			i = j - 1
		case ':', '@', '$':
			j := i + 1
			for j < len(query) && isNameChar(query[j]) {
				j++
			}
			if j == i+1 {
				continue
			}
			name := query[i:j]
			if _, seen := named[name]; !seen {
				named[name] = struct{}{}
				maxIndex++
			}
			i = j - 1
		}
	}
	return maxIndex
}

// skipQuoted returns the index of the closing quote for the literal opened at
// start. A doubled closing quote is an escape.
func skipQuoted(query string, start int, closing byte) int {
	for i := start + 1; i < len(query); i++ {
		if query[i] != closing {
			continue
		}
		if closing != ']' && i+1 < len(query) && query[i+1] == closing {
			i++
			continue
		}
		return i
	}
	return len(query)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isNameChar(c byte) bool {
	return isDigit(c) || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
