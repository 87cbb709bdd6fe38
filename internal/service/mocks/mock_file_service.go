package mocks

import (
	"context"
	"io"
	"time"

	"fileapi/internal/model"
	"fileapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) CreateOwner(ctx context.Context, ref model.OwnerRef) (*model.Owner, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Owner), args.Error(1)
}

func (m *MockFileService) DeleteOwner(ctx context.Context, ref model.OwnerRef, force bool) error {
	args := m.Called(ctx, ref, force)
	return args.Error(0)
}

func (m *MockFileService) RestoreOwner(ctx context.Context, ref model.OwnerRef) (*model.Owner, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Owner), args.Error(1)
}

func (m *MockFileService) Upload(ctx context.Context, owner model.OwnerRef, up *service.UploadedFile, opts service.UploadOptions) (*model.File, error) {
	args := m.Called(ctx, owner, up, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) ListByOwner(ctx context.Context, owner model.OwnerRef) (*service.FileListResult, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileListResult), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, id string) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Update(ctx context.Context, id string, in service.FileUpdate) (*model.File, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileService) URL(f *model.File) (string, bool) {
	args := m.Called(f)
	return args.String(0), args.Bool(1)
}

func (m *MockFileService) ModifiedAt(ctx context.Context, f *model.File) (time.Time, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockFileService) Stream(ctx context.Context, f *model.File) (io.ReadCloser, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}
