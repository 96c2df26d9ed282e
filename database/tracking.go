package database

import "github.com/gaborage/sqldao/database/internal/tracking"

// TrackedConnection is the connection wrapper NewConnection returns. It logs,
// traces and meters every statement prepared through it.
type TrackedConnection = tracking.Connection

// NewTrackedConnection wraps conn with statement tracking configured from cfg.
var NewTrackedConnection = tracking.NewConnection
