package mocks

import (
	"context"

	"fileapi/internal/model"
	"fileapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Create(ctx context.Context, f *model.File) (*model.File, error) {
	args := m.Called(ctx, f)
	if fn, ok := args.Get(0).(func(context.Context, *model.File) *model.File); ok {
		return fn(ctx, f), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) ListByOwner(ctx context.Context, owner model.OwnerRef) ([]model.File, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileRepository) Update(ctx context.Context, f *model.File) (*model.File, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) DeleteByOwner(ctx context.Context, owner model.OwnerRef) (int64, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(int64), args.Error(1)
}

type MockOwnerRepository struct {
	mock.Mock
}

func (m *MockOwnerRepository) Create(ctx context.Context, o *model.Owner) (*model.Owner, error) {
	args := m.Called(ctx, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Owner), args.Error(1)
}

func (m *MockOwnerRepository) Find(ctx context.Context, ref model.OwnerRef) (*model.Owner, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Owner), args.Error(1)
}

func (m *MockOwnerRepository) Exists(ctx context.Context, ref model.OwnerRef) (bool, error) {
	args := m.Called(ctx, ref)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnerRepository) SoftDelete(ctx context.Context, ref model.OwnerRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockOwnerRepository) Restore(ctx context.Context, ref model.OwnerRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockOwnerRepository) Delete(ctx context.Context, ref model.OwnerRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

// MockTransactor runs fn directly against the embedded mock repositories.
type MockTransactor struct {
	mock.Mock
	Files  *MockFileRepository
	Owners *MockOwnerRepository
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(repository.FileRepository, repository.OwnerRepository) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Files, m.Owners)
}
