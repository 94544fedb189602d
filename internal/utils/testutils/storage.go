package testutils

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// StorageMock implements storages.Storager for tests that need to
// script storage failures the in-memory backend cannot produce.
type StorageMock struct {
	mock.Mock
}

func (s *StorageMock) GetCwd() string {
	args := s.Called()
	return args.String(0)
}

func (s *StorageMock) GetObject(ctx context.Context, filePath string) (io.ReadCloser, error) {
	args := s.Called(ctx, filePath)
	var reader io.ReadCloser
	if v := args.Get(0); v != nil {
		reader = v.(io.ReadCloser)
	}
	return reader, args.Error(1)
}

func (s *StorageMock) Exists(ctx context.Context, fileName string) (bool, error) {
	args := s.Called(ctx, fileName)
	return args.Bool(0), args.Error(1)
}
