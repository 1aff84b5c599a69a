package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Postgres(t *testing.T) {
	tests := []struct {
		code string
		kind ViolationKind
	}{
		{"23503", ForeignKeyViolation},
		{"23505", UniqueViolation},
		{"23502", NotNullViolation},
		{"23514", CheckViolation},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: tt.code, Message: "violation", Detail: "Key (id)=(1)"})
			v, ok := Classify(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, v.Kind)
			assert.Equal(t, "violation: Key (id)=(1)", v.Detail)
		})
	}

	_, ok := Classify(&pgconn.PgError{Code: "08006"})
	assert.False(t, ok, "connection failures are not violations")
}

func TestClassify_Validation(t *testing.T) {
	type row struct {
		Name string `validate:"required"`
	}
	err := validator.New().Struct(row{})
	require.Error(t, err)

	v, ok := Classify(fmt.Errorf("validate: %w", err))
	require.True(t, ok)
	assert.Equal(t, ValidationFailure, v.Kind)
	assert.Equal(t, "Name failed on required", v.Detail)
}

func TestClassify_Other(t *testing.T) {
	_, ok := Classify(nil)
	assert.False(t, ok)

	_, ok = Classify(errors.New("connection reset"))
	assert.False(t, ok)
}

func TestFatalInitError(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&FatalInitError{Stage: "migrate", Err: cause})

	assert.EqualError(t, err, "database init failed at migrate: disk full")
	assert.ErrorIs(t, err, cause)
}
