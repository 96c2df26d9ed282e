package dao

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// mutation is what a write reports back.
type mutation struct {
	affected int64
	key      int64
}

// execMutation runs an insert, update or delete. Without a generated key it
// returns the affected row count. With one, a key that cannot be read is an
// ErrGeneratedKeyUnavailable, never a fallback to the count.
func execMutation(ctx context.Context, b *boundStatement, d Descriptor) (mutation, error) {
	if d.GeneratedKey && d.KeyMode == Returning {
		return execReturning(ctx, b)
	}

	res, err := b.exec(ctx)
	if err != nil {
		return mutation{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return mutation{}, fail(ErrQueryExecution, err)
	}
	if !d.GeneratedKey {
		return mutation{affected: affected}, nil
	}

	if affected == 0 {
		return mutation{}, fail(ErrGeneratedKeyUnavailable, errors.New("insert affected no rows"))
	}
	key, err := res.LastInsertId()
	if err != nil {
		return mutation{}, fail(ErrGeneratedKeyUnavailable, err)
	}
	return mutation{affected: affected, key: key}, nil
}

// execReturning reads the key from the first column of the first returned row.
// Every returned row counts as affected.
func execReturning(ctx context.Context, b *boundStatement) (mutation, error) {
	rows, err := b.query(ctx)
	if err != nil {
		return mutation{}, err
	}
	cols, list, err := drain(rows)
	if err != nil {
		return mutation{}, err
	}
	if len(list) == 0 || len(cols) == 0 {
		return mutation{}, fail(ErrGeneratedKeyUnavailable, errors.New("insert returned no rows"))
	}

	v := list[0][cols[0]]
	key, ok := keyOf(v)
	if !ok {
		return mutation{}, fail(ErrGeneratedKeyUnavailable, fmt.Errorf("key column %q holds %s, not an integer", cols[0], v.Kind()))
	}
	return mutation{affected: int64(len(list)), key: key}, nil
}

// keyOf accepts integer columns and integral numeric text, which some drivers
// use for NUMERIC and NUMBER keys.
func keyOf(v Value) (int64, bool) {
	if n, ok := v.AsInt(); ok {
		return n, true
	}
	if s, ok := v.AsString(); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	return 0, false
}
