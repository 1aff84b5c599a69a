package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// FatalInitError reports a startup failure the process cannot recover from.
type FatalInitError struct {
	Stage string
	Err   error
}

func (e *FatalInitError) Error() string {
	return fmt.Sprintf("database init failed at %s: %v", e.Stage, e.Err)
}

func (e *FatalInitError) Unwrap() error { return e.Err }

// ViolationKind names the integrity rule a write broke.
type ViolationKind string

const (
	ForeignKeyViolation ViolationKind = "foreign_key"
	UniqueViolation     ViolationKind = "unique"
	NotNullViolation    ViolationKind = "not_null"
	CheckViolation      ViolationKind = "check"
	ValidationFailure   ViolationKind = "validation"
)

// Violation is a classified integrity or validation failure.
type Violation struct {
	Kind   ViolationKind
	Detail string
}

// Classify reports whether err is a constraint or validation failure,
// as opposed to an operational error such as a lost connection.
func Classify(err error) (Violation, bool) {
	if err == nil {
		return Violation{}, false
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
		}
		return Violation{Kind: ValidationFailure, Detail: strings.Join(fields, "; ")}, true
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return classifySQLite(serr)
	}

	var perr *pgconn.PgError
	if errors.As(err, &perr) {
		return classifyPostgres(perr)
	}

	return Violation{}, false
}

func classifySQLite(err *sqlite.Error) (Violation, bool) {
	msg := err.Error()
	switch err.Code() {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return Violation{Kind: ForeignKeyViolation, Detail: msg}, true
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return Violation{Kind: UniqueViolation, Detail: msg}, true
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return Violation{Kind: NotNullViolation, Detail: msg}, true
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return Violation{Kind: CheckViolation, Detail: msg}, true
	}

	// Primary result code only; fall back to the message.
	if err.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return Violation{}, false
	}
	switch {
	case strings.Contains(msg, "FOREIGN KEY"):
		return Violation{Kind: ForeignKeyViolation, Detail: msg}, true
	case strings.Contains(msg, "UNIQUE"):
		return Violation{Kind: UniqueViolation, Detail: msg}, true
	case strings.Contains(msg, "NOT NULL"):
		return Violation{Kind: NotNullViolation, Detail: msg}, true
	default:
		return Violation{Kind: CheckViolation, Detail: msg}, true
	}
}

func classifyPostgres(err *pgconn.PgError) (Violation, bool) {
	detail := err.Message
	if err.Detail != "" {
		detail += ": " + err.Detail
	}
	switch err.Code {
	case "23503":
		return Violation{Kind: ForeignKeyViolation, Detail: detail}, true
	case "23505":
		return Violation{Kind: UniqueViolation, Detail: detail}, true
	case "23502":
		return Violation{Kind: NotNullViolation, Detail: detail}, true
	case "23514":
		return Violation{Kind: CheckViolation, Detail: detail}, true
	}
	return Violation{}, false
}
