package database

import (
	"github.com/gaborage/sqldao/database/types"
)

// Interface is a pooled connection source. The definition lives in database/types
// to avoid import cycles.
type Interface = types.Interface

// Conn is a single borrowed connection.
type Conn = types.Conn

// Statement is a statement prepared on a borrowed connection.
type Statement = types.Statement
