package mocks

import (
	"context"
	"io"
	"time"

	"fileapi/internal/storage"

	"github.com/stretchr/testify/mock"
)

type MockDisk struct {
	mock.Mock
}

func (m *MockDisk) Exists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockDisk) ReadStream(ctx context.Context, path string) (io.ReadCloser, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockDisk) Put(ctx context.Context, path string, r io.Reader, opt storage.PutOptions) error {
	args := m.Called(ctx, path, r, opt)
	if f, ok := args.Get(0).(func(context.Context, string, io.Reader, storage.PutOptions) error); ok {
		return f(ctx, path, r, opt)
	}
	return args.Error(0)
}

func (m *MockDisk) Delete(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockDisk) URL(path string) (string, bool) {
	args := m.Called(path)
	return args.String(0), args.Bool(1)
}

func (m *MockDisk) LastModified(ctx context.Context, path string) (time.Time, bool, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(time.Time), args.Bool(1), args.Error(2)
}
