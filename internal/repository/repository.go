// Package repository implements create/get/update/delete once for every
// entity declared in the schema registry. Each call runs in its own
// transaction on the caller's session and returns either the persisted
// entity or a *NotFoundError / *ProcessingError; raw store errors are
// logged and never returned.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campusapi/internal/database"
	"campusapi/internal/database/dialect"
	"campusapi/internal/pkg/logger"
	"campusapi/internal/schema"
)

// Patch is a sparse update for T: Apply copies only the fields that were set.
type Patch[T any] interface {
	Apply(v *T)
}

// Repository is the data access for one entity type.
type Repository[T any] struct {
	entity schema.Entity[T]

	insertSQL string
	selectSQL string
	updateSQL string
	deleteSQL string
}

// New prepares the statements for entity in dialect d.
func New[T any](d dialect.Dialect, entity schema.Entity[T]) *Repository[T] {
	t := entity.Table
	table := d.Quote(t.Name)
	pk := d.Quote(t.PrimaryKey)

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = d.Quote(c.Name)
	}
	returning := pk + ", " + strings.Join(cols, ", ")

	insertPH := make([]string, len(cols))
	sets := make([]string, len(cols))
	for i, c := range cols {
		insertPH[i] = d.Placeholder(i + 1)
		sets[i] = c + " = " + d.Placeholder(i+1)
	}
	idPH := d.Placeholder(len(cols) + 1)

	return &Repository[T]{
		entity: entity,
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
			table, strings.Join(cols, ", "), strings.Join(insertPH, ", "), returning),
		selectSQL: fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", returning, table, pk, d.Placeholder(1)),
		updateSQL: fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING %s",
			table, strings.Join(sets, ", "), pk, idPH, returning),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE %s = %s", table, pk, d.Placeholder(1)),
	}
}

// Name is the entity's table name.
func (r *Repository[T]) Name() string { return r.entity.Name() }

// Create validates v, inserts it and returns the stored row with its new key.
// Any key already set on v is ignored.
func (r *Repository[T]) Create(ctx context.Context, s *database.Session, v T) (*T, error) {
	*r.entity.ID(&v) = 0
	if r.entity.Defaults != nil {
		r.entity.Defaults(&v)
	}
	if err := r.entity.Validate(&v); err != nil {
		return nil, r.fail(ctx, "create", 0, err)
	}

	var out T
	err := s.InTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, r.insertSQL, r.entity.Values(&v)...).
			Scan(r.entity.ScanTargets(&out)...)
	})
	if err != nil {
		return nil, r.fail(ctx, "create", 0, err)
	}
	return &out, nil
}

// Get returns the row with primary key id.
func (r *Repository[T]) Get(ctx context.Context, s *database.Session, id int64) (*T, error) {
	var out T
	err := s.InTx(ctx, func(tx *sql.Tx) error {
		return r.load(ctx, tx, id, &out)
	})
	if err != nil {
		return nil, r.fail(ctx, "get", id, err)
	}
	return &out, nil
}

// Update merges p into the stored row, validates the merged row and
// persists exactly that value. The primary key never changes.
func (r *Repository[T]) Update(ctx context.Context, s *database.Session, id int64, p Patch[T]) (*T, error) {
	var out T
	err := s.InTx(ctx, func(tx *sql.Tx) error {
		var cur T
		if err := r.load(ctx, tx, id, &cur); err != nil {
			return err
		}

		p.Apply(&cur)
		*r.entity.ID(&cur) = id
		if err := r.entity.Validate(&cur); err != nil {
			return err
		}

		args := append(r.entity.Values(&cur), id)
		return tx.QueryRowContext(ctx, r.updateSQL, args...).Scan(r.entity.ScanTargets(&out)...)
	})
	if err != nil {
		return nil, r.fail(ctx, "update", id, err)
	}
	return &out, nil
}

// Delete removes the row with primary key id. It fails when other rows
// still reference it.
func (r *Repository[T]) Delete(ctx context.Context, s *database.Session, id int64) error {
	err := s.InTx(ctx, func(tx *sql.Tx) error {
		var cur T
		if err := r.load(ctx, tx, id, &cur); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.deleteSQL, id)
		return err
	})
	if err != nil {
		return r.fail(ctx, "delete", id, err)
	}
	return nil
}

func (r *Repository[T]) load(ctx context.Context, tx *sql.Tx, id int64, dst *T) error {
	err := tx.QueryRowContext(ctx, r.selectSQL, id).Scan(r.entity.ScanTargets(dst)...)
	if errors.Is(err, sql.ErrNoRows) {
		return &NotFoundError{Entity: r.Name(), ID: id}
	}
	return err
}

// fail converts err into the repository taxonomy.
func (r *Repository[T]) fail(ctx context.Context, op string, id int64, err error) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf
	}

	pe := &ProcessingError{Entity: r.Name(), ID: id, Op: op}
	if v, ok := database.Classify(err); ok {
		pe.Kind = v.Kind
		pe.Reason = fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	} else {
		pe.Kind = StoreFailure
		pe.Reason = "store unavailable"
		if ctxErr := ctx.Err(); ctxErr != nil {
			pe.Reason = ctxErr.Error()
		}
	}

	log := logger.WithComponent("repository")
	log.Warn().
		Str("entity", pe.Entity).
		Int64("id", id).
		Str("op", op).
		Str("kind", string(pe.Kind)).
		Err(err).
		Msg("repository operation failed")

	return pe
}
