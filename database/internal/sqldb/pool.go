// Package sqldb adapts a *sql.DB pool to the types.Interface connection source
// shared by every SQL vendor package.
package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/gaborage/sqldao/config"
	"github.com/gaborage/sqldao/database/types"
	"github.com/gaborage/sqldao/logger"
)

const (
	// ConnectTimeout bounds the initial ping issued by the vendor constructors.
	ConnectTimeout = 10 * time.Second
	healthTimeout  = 5 * time.Second
)

// Pool implements types.Interface over a *sql.DB.
type Pool struct {
	db     *sql.DB
	vendor types.Vendor
	name   string
	logger logger.Logger
}

// New wraps db. name is the human-readable vendor name used in log messages.
func New(db *sql.DB, vendor types.Vendor, name string, log logger.Logger) *Pool {
	return &Pool{db: db, vendor: vendor, name: name, logger: log}
}

// Configure applies pool sizing from cfg to db.
func Configure(db *sql.DB, cfg *config.PoolConfig) {
	db.SetMaxOpenConns(int(cfg.Max.Connections))
	db.SetMaxIdleConns(int(cfg.Idle.Connections))
	db.SetConnMaxLifetime(cfg.Lifetime.Max)
	db.SetConnMaxIdleTime(cfg.Idle.Time)
}

// Verify pings db within ConnectTimeout and closes it when the ping fails.
func Verify(db *sql.DB, name string, ping func(context.Context, *sql.DB) error, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), ConnectTimeout)
	defer cancel()

	if err := ping(ctx, db); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msgf("Failed to close %s database connection after ping failure", name)
		}
		return err
	}
	return nil
}

// Conn borrows a dedicated connection from the pool. Closing it returns it to the pool.
func (p *Pool) Conn(ctx context.Context) (types.Conn, error) {
	c, err := p.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: c}, nil
}

// Health checks database connectivity
func (p *Pool) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	return p.db.PingContext(ctx)
}

// Stats returns database connection statistics
func (p *Pool) Stats() (map[string]any, error) {
	stats := p.db.Stats()
	return map[string]any{
		"max_open_connections": stats.MaxOpenConnections,
		"open_connections":     stats.OpenConnections,
		"in_use":               stats.InUse,
		"idle":                 stats.Idle,
		"wait_count":           stats.WaitCount,
		"wait_duration":        stats.WaitDuration.String(),
		"max_idle_closed":      stats.MaxIdleClosed,
		"max_idle_time_closed": stats.MaxIdleTimeClosed,
		"max_lifetime_closed":  stats.MaxLifetimeClosed,
	}, nil
}

// Close closes the pool
func (p *Pool) Close() error {
	p.logger.Info().Msgf("Closing %s database connection", p.name)
	return p.db.Close()
}

// DatabaseType returns the vendor identifier
func (p *Pool) DatabaseType() string {
	return p.vendor
}

// Conn wraps *sql.Conn to implement types.Conn
type Conn struct {
	conn *sql.Conn
}

// Prepare prepares query on the borrowed connection
func (c *Conn) Prepare(ctx context.Context, query string) (types.Statement, error) {
	stmt, err := c.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Statement{stmt: stmt}, nil
}

// Close returns the connection to the pool
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Statement wraps sql.Stmt to implement types.Statement
type Statement struct {
	stmt *sql.Stmt
}

// Query executes a prepared query with arguments
func (s *Statement) Query(ctx context.Context, args ...any) (*sql.Rows, error) {
	return s.stmt.QueryContext(ctx, args...)
}

// Exec executes a prepared statement with arguments
func (s *Statement) Exec(ctx context.Context, args ...any) (sql.Result, error) {
	return s.stmt.ExecContext(ctx, args...)
}

// Close closes the prepared statement
func (s *Statement) Close() error {
	return s.stmt.Close()
}
