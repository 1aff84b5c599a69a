package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"campusapi/internal/database/dialect"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/schema"
)

// Step is one named DDL statement.
type Step struct {
	Name  string
	Table string
	SQL   string
}

// Steps renders the DDL for tables in order. Every statement is idempotent.
func Steps(d dialect.Dialect, tables []*schema.Table) []Step {
	var steps []Step
	for _, t := range tables {
		steps = append(steps, Step{
			Name:  "create_table_" + t.Name,
			Table: t.Name,
			SQL:   createTable(d, t),
		})
		for _, c := range t.Columns {
			if !c.Index {
				continue
			}
			idx := "ix_" + t.Name + "_" + c.Name
			unique := ""
			if c.Unique {
				unique = "UNIQUE "
			}
			steps = append(steps, Step{
				Name:  "create_index_" + idx,
				Table: t.Name,
				SQL: fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
					unique, d.Quote(idx), d.Quote(t.Name), d.Quote(c.Name)),
			})
		}
	}
	return steps
}

func createTable(d dialect.Dialect, t *schema.Table) string {
	defs := []string{d.Quote(t.PrimaryKey) + " " + d.PrimaryKey}

	for _, c := range t.Columns {
		def := d.Quote(c.Name) + " " + d.ColumnType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		if c.Default != "" {
			def += " DEFAULT " + c.Default
		}
		// Indexed unique columns get a named unique index instead.
		if c.Unique && !c.Index {
			def += " UNIQUE"
		}
		defs = append(defs, def)
	}

	for _, u := range t.Uniques {
		cols := make([]string, len(u.Columns))
		for i, c := range u.Columns {
			cols[i] = d.Quote(c)
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)", d.Quote(u.Name), strings.Join(cols, ", ")))
	}

	for _, c := range t.ForeignKeys() {
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.Quote(c.Name), d.Quote(c.References.Table), d.Quote(c.References.Column)))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", d.Quote(t.Name), strings.Join(defs, ",\n  "))
}

// Materialize creates every table and index that does not exist yet.
// Existing tables are left untouched.
func Materialize(ctx context.Context, db *sql.DB, d dialect.Dialect, tables []*schema.Table) error {
	log := logger.WithComponent("database")
	start := time.Now()

	log.Info().
		Str("event", "db_migration_start").
		Str("status", "in_progress").
		Str("dialect", d.Name).
		Int("tables", len(tables)).
		Msg("materializing schema")

	for _, step := range Steps(d, tables) {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error().
				Str("event", "db_migration_failed").
				Str("status", "error").
				Str("migration_step", step.Name).
				Str("table", step.Table).
				Err(err).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("migration step failed")
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug().
			Str("event", "db_migration_step").
			Str("status", "success").
			Str("migration_step", step.Name).
			Str("table", step.Table).
			Int64("step_duration_ms", time.Since(stepStart).Milliseconds()).
			Msg("migration step applied")
	}

	log.Info().
		Str("event", "db_migration_success").
		Str("status", "success").
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("schema materialized")

	return nil
}
