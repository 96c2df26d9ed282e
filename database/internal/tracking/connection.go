package tracking

import (
	"context"
	"time"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/database/types"
	"github.com/gaborage/sqldao/logger"
)

// Connection wraps a types.Interface so every connection it hands out tracks
// acquisition, preparation and execution.
type Connection struct {
	conn             types.Interface
	tc               Context
	unregisterGauges func()
}

// NewConnection wraps conn. The vendor is taken from conn.DatabaseType() and the
// tracking settings from cfg.Query. Pool gauges are registered until Close.
func NewConnection(conn types.Interface, log logger.Logger, cfg *config.DatabaseConfig) types.Interface {
	vendor := conn.DatabaseType()
	return &Connection{
		conn: conn,
		tc: Context{
			Logger:   log,
			Vendor:   vendor,
			Settings: NewSettings(cfg),
		},
		unregisterGauges: RegisterConnectionPoolMetrics(conn, vendor),
	}
}

// Conn borrows a connection and wraps it with tracking. Only failed
// acquisitions are reported; successful ones are folded into the statements.
func (c *Connection) Conn(ctx context.Context) (types.Conn, error) {
	start := time.Now()
	conn, err := c.conn.Conn(ctx)
	if err != nil {
		TrackDBOperation(ctx, &c.tc, opAcquire, nil, start, 0, err)
		return nil, err
	}
	return &trackedConn{conn: conn, tc: &c.tc}, nil
}

// Health delegates without tracking.
func (c *Connection) Health(ctx context.Context) error { return c.conn.Health(ctx) }

// Stats delegates without tracking.
func (c *Connection) Stats() (map[string]any, error) { return c.conn.Stats() }

// DatabaseType delegates without tracking.
func (c *Connection) DatabaseType() string { return c.conn.DatabaseType() }

// Close unregisters the pool gauges and closes the wrapped source.
func (c *Connection) Close() error {
	if c.unregisterGauges != nil {
		c.unregisterGauges()
	}
	return c.conn.Close()
}

type trackedConn struct {
	conn types.Conn
	tc   *Context
}

func (c *trackedConn) Prepare(ctx context.Context, query string) (types.Statement, error) {
	start := time.Now()
	stmt, err := c.conn.Prepare(ctx, query)
	TrackDBOperation(ctx, c.tc, opPrepare+opSeparator+query, nil, start, 0, err)
	if err != nil {
		return nil, err
	}
	return NewStatement(stmt, c.tc, query), nil
}

func (c *trackedConn) Close() error { return c.conn.Close() }
