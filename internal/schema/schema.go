// Package schema declares the table-backed entity types: table identity,
// primary key, foreign keys and uniqueness constraints, plus the typed
// accessors the generic repository uses to read and write each entity.
package schema

import (
	"fmt"
	"reflect"
)

// ColumnType is the logical type of a column; dialects map it to SQL.
type ColumnType int

const (
	Integer ColumnType = iota
	Text
	Boolean
)

// ForeignKey points a column at another table's column.
type ForeignKey struct {
	Table  string
	Column string
}

// Column describes one non-key column.
type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	Unique     bool
	Index      bool
	Default    string // SQL literal, empty for none
	References *ForeignKey
}

// UniqueConstraint spans more than one column.
type UniqueConstraint struct {
	Name    string
	Columns []string
}

// Table is the physical identity of an entity type.
type Table struct {
	Name       string
	PrimaryKey string
	Columns    []Column
	Uniques    []UniqueConstraint
}

// ColumnNames returns the non-key column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ForeignKeys returns the columns that reference another table.
func (t *Table) ForeignKeys() []Column {
	var fks []Column
	for _, c := range t.Columns {
		if c.References != nil {
			fks = append(fks, c)
		}
	}
	return fks
}

// Entity binds a Go type to its table.
//
// Fields must return pointers to the non-key fields of v in the same order
// as Table.Columns; they are used both as scan destinations and, dereferenced,
// as statement arguments.
type Entity[T any] struct {
	Table    *Table
	ID       func(v *T) *int64
	Fields   func(v *T) []any
	Defaults func(v *T)
}

// Name is the table name, used in error messages.
func (e Entity[T]) Name() string { return e.Table.Name }

// Validate checks v against its declared field rules.
func (e Entity[T]) Validate(v *T) error {
	return validate.Struct(v)
}

// ScanTargets returns pointers for the primary key followed by every column.
func (e Entity[T]) ScanTargets(v *T) []any {
	return append([]any{e.ID(v)}, e.Fields(v)...)
}

// Values returns the column values of v, with nil pointers mapped to SQL NULL.
func (e Entity[T]) Values(v *T) []any {
	ptrs := e.Fields(v)
	out := make([]any, len(ptrs))
	for i, p := range ptrs {
		out[i] = deref(reflect.ValueOf(p).Elem())
	}
	return out
}

func deref(v reflect.Value) any {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	return v.Interface()
}

// check verifies that the accessors agree with the table declaration.
func (e Entity[T]) check() error {
	var zero T
	if n := len(e.Fields(&zero)); n != len(e.Table.Columns) {
		return fmt.Errorf("schema %s: %d fields for %d columns", e.Table.Name, n, len(e.Table.Columns))
	}
	return nil
}
