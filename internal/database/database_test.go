package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusapi/internal/config"
	"campusapi/internal/database/dialect"
	"campusapi/internal/schema"
)

func sqliteConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		Prefix:   "sqlite:///",
		FilePath: filepath.Join(t.TempDir(), "data", "campus.db"),
	}
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := Initialize(context.Background(), sqliteConfig(t), schema.Tables())
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestInitialize_SQLite(t *testing.T) {
	cfg := sqliteConfig(t)

	eng, err := Initialize(context.Background(), cfg, schema.Tables())
	require.NoError(t, err)
	defer eng.Close()

	assert.Equal(t, "sqlite", eng.Dialect().Name)
	_, err = os.Stat(cfg.FilePath)
	assert.NoError(t, err, "database file should exist")

	var n int
	err = eng.DB().QueryRow("SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, len(schema.Tables()), n)
}

func TestInitialize_ReopenKeepsData(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	eng, err := Initialize(ctx, cfg, schema.Tables())
	require.NoError(t, err)
	_, err = eng.DB().Exec(`INSERT INTO colleges (name, short_name) VALUES ('Engineering', 'ENG')`)
	require.NoError(t, err)
	require.NoError(t, eng.Close())

	eng, err = Initialize(ctx, cfg, schema.Tables())
	require.NoError(t, err)
	defer eng.Close()

	var name string
	require.NoError(t, eng.DB().QueryRow(`SELECT name FROM colleges WHERE id = 1`).Scan(&name))
	assert.Equal(t, "Engineering", name)
}

func TestInitialize_ForeignKeysOnEveryConnection(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	const conns = 4
	sessions := make([]*Session, conns)
	for i := range sessions {
		s, err := eng.OpenSession(ctx)
		require.NoError(t, err)
		sessions[i] = s
	}
	defer func() {
		for _, s := range sessions {
			s.Close()
		}
	}()

	var wg sync.WaitGroup
	results := make([]int, conns)
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			_ = s.conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&results[i])
		}(i, s)
	}
	wg.Wait()

	for i, v := range results {
		assert.Equalf(t, 1, v, "connection %d has foreign keys disabled", i)
	}
}

func TestInitialize_ForeignKeyViolationRejected(t *testing.T) {
	eng := newEngine(t)

	_, err := eng.DB().Exec(`INSERT INTO departments (name, short_name, college_id) VALUES ('CS', 'CS', 999)`)
	require.Error(t, err)

	v, ok := Classify(err)
	require.True(t, ok)
	assert.Equal(t, ForeignKeyViolation, v.Kind)
}

func TestInitialize_Failures(t *testing.T) {
	t.Run("unsupported prefix", func(t *testing.T) {
		_, err := Initialize(context.Background(), config.DatabaseConfig{
			Prefix:   "mysql://",
			FilePath: "localhost/campus",
		}, schema.Tables())

		var fatal *FatalInitError
		require.ErrorAs(t, err, &fatal)
		assert.Equal(t, "config", fatal.Stage)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := Initialize(context.Background(), config.DatabaseConfig{Prefix: "sqlite:///"}, schema.Tables())

		var fatal *FatalInitError
		require.ErrorAs(t, err, &fatal)
		assert.Equal(t, "config", fatal.Stage)
	})

	t.Run("unwritable location", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

		_, err := Initialize(context.Background(), config.DatabaseConfig{
			Prefix:   "sqlite:///",
			FilePath: filepath.Join(blocker, "campus.db"),
		}, schema.Tables())

		var fatal *FatalInitError
		require.ErrorAs(t, err, &fatal)
		assert.Equal(t, "open", fatal.Stage)
	})
}

func withMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	orig := openDB
	openDB = func(driver.Connector, dialect.Dialect) *sql.DB { return db }
	t.Cleanup(func() { openDB = orig })
	return mock
}

func TestInitialize_PingError(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("ping failed"))
	mock.ExpectClose()

	eng, err := Initialize(context.Background(), sqliteConfig(t), schema.Tables())
	assert.Nil(t, eng)

	var fatal *FatalInitError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "connect", fatal.Stage)
	assert.Contains(t, err.Error(), "db ping: ping failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInitialize_MigrationError(t *testing.T) {
	mock := withMockDB(t)
	mock.ExpectPing()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").WillReturnError(errors.New("read-only database"))
	mock.ExpectClose()

	_, err := Initialize(context.Background(), sqliteConfig(t), schema.Tables())

	var fatal *FatalInitError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "migrate", fatal.Stage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_InTx(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	count := func() int {
		var n int
		require.NoError(t, eng.DB().QueryRow(`SELECT count(*) FROM colleges`).Scan(&n))
		return n
	}

	err := eng.WithSession(ctx, func(s *Session) error {
		return s.InTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO colleges (name, short_name) VALUES ('A', 'A')`)
			return err
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	boom := errors.New("boom")
	err = eng.WithSession(ctx, func(s *Session) error {
		return s.InTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, `INSERT INTO colleges (name, short_name) VALUES ('B', 'B')`); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count(), "failed transaction must roll back")

	// The session stays usable after a rollback.
	err = eng.WithSession(ctx, func(s *Session) error {
		if err := s.InTx(ctx, func(*sql.Tx) error { return boom }); !errors.Is(err, boom) {
			return err
		}
		return s.InTx(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO colleges (name, short_name) VALUES ('C', 'C')`)
			return err
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count())
}

func TestSession_CloseReleasesConnection(t *testing.T) {
	eng := newEngine(t)
	eng.DB().SetMaxOpenConns(1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := eng.WithSession(ctx, func(*Session) error { return errors.New("fail") })
		assert.Error(t, err)
	}

	// A leaked connection would block here with a single-connection pool.
	s, err := eng.OpenSession(ctx)
	require.NoError(t, err)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.NoError(t, (*Session)(nil).Close())
}
