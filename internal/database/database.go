// Package database owns the connection pool, the per-connection setup hook,
// schema materialization at startup and the session/transaction scope the
// repositories run in.
package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"campusapi/internal/config"
	"campusapi/internal/database/dialect"
	"campusapi/internal/database/migration"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/schema"
)

var openDB = func(c driver.Connector, d dialect.Dialect) *sql.DB {
	attrs := otelsql.WithAttributes(semconv.DBSystemSqlite)
	if d.Name == dialect.Postgres.Name {
		attrs = otelsql.WithAttributes(semconv.DBSystemPostgreSQL)
	}
	return otelsql.OpenDB(c, attrs, otelsql.WithSQLCommenter(d.Name == dialect.Postgres.Name))
}

// Engine is the process-wide handle to the store.
type Engine struct {
	db      *sql.DB
	dialect dialect.Dialect
}

// Initialize opens the store described by cfg, verifies connectivity and
// creates any of tables that do not exist yet. Every error is a *FatalInitError.
func Initialize(ctx context.Context, cfg config.DatabaseConfig, tables []*schema.Table) (*Engine, error) {
	log := logger.WithComponent("database")

	url, err := cfg.URL()
	if err != nil {
		return nil, &FatalInitError{Stage: "config", Err: err}
	}
	d, dsn, err := dialect.FromURL(url)
	if err != nil {
		return nil, &FatalInitError{Stage: "config", Err: err}
	}

	if d.Name == dialect.SQLite.Name {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, &FatalInitError{Stage: "open", Err: fmt.Errorf("create data directory: %w", err)}
		}
	}

	connector, err := newConnector(d, dsn)
	if err != nil {
		return nil, &FatalInitError{Stage: "open", Err: err}
	}
	db := openDB(connector, d)

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeSec) * time.Second)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &FatalInitError{Stage: "connect", Err: fmt.Errorf("db ping: %w", err)}
	}

	if err := migration.Materialize(ctx, db, d, tables); err != nil {
		_ = db.Close()
		return nil, &FatalInitError{Stage: "migrate", Err: err}
	}

	log.Info().
		Str("event", "db_ready").
		Str("dialect", d.Name).
		Msg("database initialized")

	return &Engine{db: db, dialect: d}, nil
}

// DB exposes the pool for health checks.
func (e *Engine) DB() *sql.DB { return e.db }

// Dialect reports which store the engine talks to.
func (e *Engine) Dialect() dialect.Dialect { return e.dialect }

// OpenSession reserves one pooled connection. Callers must Close it.
func (e *Engine) OpenSession(ctx context.Context) (*Session, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return NewSession(conn), nil
}

// WithSession runs fn with a fresh session and releases it afterwards,
// whether fn succeeds, fails or panics.
func (e *Engine) WithSession(ctx context.Context, fn func(*Session) error) error {
	s, err := e.OpenSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// Close releases the pool.
func (e *Engine) Close() error { return e.db.Close() }

// Session is a unit of work bound to one connection. It is not safe for
// concurrent use; each request gets its own.
type Session struct {
	conn *sql.Conn
}

// NewSession wraps a connection already taken from a pool.
func NewSession(conn *sql.Conn) *Session { return &Session{conn: conn} }

// InTx runs fn in a transaction that commits when fn returns nil and
// rolls back otherwise.
func (s *Session) InTx(ctx context.Context, fn func(*sql.Tx) error) (err error) {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close returns the connection to the pool. Safe on a nil or empty session.
func (s *Session) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
