package testing

import "time"

// Logger Constants
// These constants define common logger configurations used across test files.
const (
	// TestLoggerLevelDebug is the debug log level used in most tests
	TestLoggerLevelDebug = "debug"
	// TestLoggerLevelDisabled completely disables logging in tests
	TestLoggerLevelDisabled = "disabled"
)

// Database Constants
// Common database-related test strings (credentials and row values).
const (
	TestUsername        = "testuser"
	TestDatabaseName    = "testdb"
	TestHostLocalhost   = "localhost"
	TestPasswordDefault = "testpass"
	TestItemName        = "NewItem"
	TestItemRenamed     = "UpdatedItem"
)

// Container Constants
// Startup budgets for the container fixtures.
const (
	// TestPostgreSQLStartupTimeout bounds PostgreSQL container startup
	TestPostgreSQLStartupTimeout = 60 * time.Second
	// TestOracleStartupTimeout bounds Oracle container startup, which is much slower
	TestOracleStartupTimeout = 120 * time.Second
)

// Port Numbers
// Common port numbers for test services.
const (
	TestPortPostgreSQL = 5432
	TestPortOracle     = 1521
)
