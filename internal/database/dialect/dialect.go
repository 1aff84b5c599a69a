// Package dialect holds the SQL differences between the supported stores.
package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"campusapi/internal/schema"
)

// Dialect describes how to talk SQL to one store.
type Dialect struct {
	Name string
	// Positional reports whether placeholders are numbered ($1) rather than ?.
	Positional bool
	// PrimaryKey is the column definition for a server-assigned integer key.
	PrimaryKey string
	Types      map[schema.ColumnType]string
	// OnConnect runs on every new physical connection.
	OnConnect []string
}

var SQLite = Dialect{
	Name:       "sqlite",
	PrimaryKey: "INTEGER NOT NULL PRIMARY KEY",
	Types: map[schema.ColumnType]string{
		schema.Integer: "INTEGER",
		schema.Text:    "VARCHAR",
		schema.Boolean: "BOOLEAN",
	},
	// SQLite ignores foreign keys unless enabled, and the setting is per connection.
	OnConnect: []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	},
}

var Postgres = Dialect{
	Name:       "postgres",
	Positional: true,
	PrimaryKey: "BIGSERIAL PRIMARY KEY",
	Types: map[schema.ColumnType]string{
		schema.Integer: "BIGINT",
		schema.Text:    "VARCHAR",
		schema.Boolean: "BOOLEAN",
	},
}

// FromURL picks the dialect from a store URL and returns the driver DSN.
//
//	sqlite:////var/lib/campus.db  -> SQLite, "/var/lib/campus.db"
//	sqlite:///campus.db           -> SQLite, "campus.db"
//	postgres://u:p@host:5432/db   -> Postgres, the URL unchanged
func FromURL(url string) (Dialect, string, error) {
	switch {
	case strings.HasPrefix(url, "sqlite:///"):
		dsn := strings.TrimPrefix(url, "sqlite:///")
		if dsn == "" {
			return Dialect{}, "", fmt.Errorf("sqlite url %q has no file path", url)
		}
		return SQLite, dsn, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return Postgres, url, nil
	default:
		return Dialect{}, "", fmt.Errorf("unsupported store url %q", url)
	}
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.Positional {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Quote quotes an identifier.
func (d Dialect) Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// ColumnType maps a logical column type to SQL.
func (d Dialect) ColumnType(t schema.ColumnType) string {
	return d.Types[t]
}
