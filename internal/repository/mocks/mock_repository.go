package mocks

import (
	"context"

	"campusapi/internal/database"
	"campusapi/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock for any entity repository.
type MockRepository[T any] struct {
	mock.Mock
	Entity string
}

func (m *MockRepository[T]) Name() string { return m.Entity }

func (m *MockRepository[T]) Create(ctx context.Context, s *database.Session, v T) (*T, error) {
	args := m.Called(ctx, s, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Get(ctx context.Context, s *database.Session, id int64) (*T, error) {
	args := m.Called(ctx, s, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Update(ctx context.Context, s *database.Session, id int64, p repository.Patch[T]) (*T, error) {
	args := m.Called(ctx, s, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRepository[T]) Delete(ctx context.Context, s *database.Session, id int64) error {
	args := m.Called(ctx, s, id)
	return args.Error(0)
}
