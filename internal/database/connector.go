package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"

	"campusapi/internal/database/dialect"
)

// hookConnector runs the dialect's session setup on every physical
// connection before the pool hands it out.
type hookConnector struct {
	base  driver.Connector
	stmts []string
}

func (c *hookConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.base.Connect(ctx)
	if err != nil {
		return nil, err
	}
	for _, stmt := range c.stmts {
		if err := execRaw(ctx, conn, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("connection setup %q: %w", stmt, err)
		}
	}
	return conn, nil
}

func (c *hookConnector) Driver() driver.Driver { return c.base.Driver() }

func execRaw(ctx context.Context, conn driver.Conn, query string) error {
	if ec, ok := conn.(driver.ExecerContext); ok {
		_, err := ec.ExecContext(ctx, query, nil)
		if !errors.Is(err, driver.ErrSkip) {
			return err
		}
	}

	stmt, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if sc, ok := stmt.(driver.StmtExecContext); ok {
		_, err = sc.ExecContext(ctx, nil)
		return err
	}
	_, err = stmt.Exec(nil) //nolint:staticcheck // drivers without StmtExecContext
	return err
}

// dsnConnector adapts a driver that only implements Open.
type dsnConnector struct {
	dsn string
	drv driver.Driver
}

func (c dsnConnector) Connect(context.Context) (driver.Conn, error) { return c.drv.Open(c.dsn) }

func (c dsnConnector) Driver() driver.Driver { return c.drv }

// newConnector returns the base connector for d wrapped with its OnConnect hook.
func newConnector(d dialect.Dialect, dsn string) (driver.Connector, error) {
	var base driver.Connector
	switch d.Name {
	case dialect.SQLite.Name:
		base = dsnConnector{dsn: dsn, drv: &sqlite.Driver{}}
	case dialect.Postgres.Name:
		cfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse postgres dsn: %w", err)
		}
		base = stdlib.GetConnector(*cfg)
	default:
		return nil, fmt.Errorf("no driver for dialect %q", d.Name)
	}

	if len(d.OnConnect) == 0 {
		return base, nil
	}
	return &hookConnector{base: base, stmts: d.OnConnect}, nil
}
