package dao

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the operation a descriptor performs.
type Kind uint8

const (
	Query Kind = iota + 1
	Insert
	// Update also covers DELETE and any other statement reporting affected rows.
	Update
)

func (k Kind) String() string {
	switch k {
	case Query:
		return "query"
	case Insert:
		return "insert"
	case Update:
		return "update"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// KeyMode selects how an insert's generated key is read back.
type KeyMode uint8

const (
	// LastInsertID reads sql.Result.LastInsertId after Exec.
	LastInsertID KeyMode = iota
	// Returning runs the insert as a query and reads the first column of the
	// first returned row, as with PostgreSQL's INSERT ... RETURNING id.
	Returning
)

func (m KeyMode) String() string {
	if m == Returning {
		return "returning"
	}
	return "lastinsertid"
}

// Shape is the result a caller declared for a method.
type Shape uint8

const (
	Unsupported Shape = iota
	RowList
	SingleRow
	RowCount
	GeneratedKey
)

func (s Shape) String() string {
	switch s {
	case RowList:
		return "rowlist"
	case SingleRow:
		return "singlerow"
	case RowCount:
		return "rowcount"
	case GeneratedKey:
		return "generatedkey"
	default:
		return "unsupported"
	}
}

// Descriptor is the immutable metadata of one DAO method.
type Descriptor struct {
	Kind         Kind
	SQL          string
	GeneratedKey bool
	KeyMode      KeyMode
	Shape        Shape
}

// Validate checks the descriptor's own consistency. It does not check Shape;
// see Supports.
func (d Descriptor) Validate() error {
	switch {
	case d.Kind != Query && d.Kind != Insert && d.Kind != Update:
		return fail(ErrInvalidDescriptor, fmt.Errorf("unknown kind %d", d.Kind))
	case strings.TrimSpace(d.SQL) == "":
		return fail(ErrInvalidDescriptor, errors.New("empty SQL"))
	case d.GeneratedKey && d.Kind != Insert:
		return fail(ErrInvalidDescriptor, fmt.Errorf("generated key requested on %s", d.Kind))
	case d.KeyMode == Returning && !d.GeneratedKey:
		return fail(ErrInvalidDescriptor, errors.New("returning key mode without generated key"))
	}
	return nil
}

// Supports reports whether Shape is a result this descriptor can produce:
// RowList or SingleRow for queries, GeneratedKey for inserts with a key,
// RowCount otherwise.
func (d Descriptor) Supports() bool {
	switch d.Kind {
	case Query:
		return d.Shape == RowList || d.Shape == SingleRow
	case Insert:
		if d.GeneratedKey {
			return d.Shape == GeneratedKey
		}
		return d.Shape == RowCount
	case Update:
		return d.Shape == RowCount
	default:
		return false
	}
}

// ParseDescriptor builds a descriptor from the dao and sql struct tag values.
// The dao tag is "query", "insert", "update" or "delete", optionally followed by
// ",key" and ",returning" on inserts. Shape is left Unsupported for the caller.
func ParseDescriptor(daoTag, sqlTag string) (Descriptor, error) {
	parts := strings.Split(daoTag, ",")

	var d Descriptor
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "query", "select":
		d.Kind = Query
	case "insert":
		d.Kind = Insert
	case "update", "delete":
		d.Kind = Update
	default:
		return Descriptor{}, fail(ErrInvalidDescriptor, fmt.Errorf("unknown operation %q", parts[0]))
	}

	for _, opt := range parts[1:] {
		switch strings.ToLower(strings.TrimSpace(opt)) {
		case "key":
			d.GeneratedKey = true
		case "returning":
			d.KeyMode = Returning
		case "":
		default:
			return Descriptor{}, fail(ErrInvalidDescriptor, fmt.Errorf("unknown option %q", opt))
		}
	}

	d.SQL = strings.TrimSpace(sqlTag)
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}
