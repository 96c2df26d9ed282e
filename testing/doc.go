// Package testing provides testing utilities for code built on sqldao.
//
// # Mocks
//
// The mocks subpackage provides testify-based mock implementations of the
// connection source interfaces:
//   - database.Interface (also a dao.Source)
//   - database.Conn
//   - database.Statement
//
// # Fixtures
//
// The fixtures subpackage provides pre-configured mocks for common scenarios
// (healthy, failing, returning fixed rows) and SQL result builders.
//
// # Containers
//
// The containers subpackage, built only with the integration tag, starts
// PostgreSQL and Oracle testcontainers and hands back a ready
// config.DatabaseConfig.
//
// # Usage
//
// Import the specific subpackages you need:
//
//	import (
//		"github.com/gaborage/sqldao/testing/mocks"
//		"github.com/gaborage/sqldao/testing/fixtures"
//	)
package testing
