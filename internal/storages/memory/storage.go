package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
)

// Storage is an in-memory object store. It backs tests that need a seeded
// dump without touching the filesystem.
type Storage struct {
	mu       sync.RWMutex
	basePath string
	files    map[string][]byte
}

// New initializes a root in-memory storage.
func New(basePath string) *Storage {
	return &Storage{
		basePath: basePath,
		files:    make(map[string][]byte),
	}
}

// Put seeds an object. It is a concrete method, not part of the read-side
// storage contract.
func (s *Storage) Put(filePath string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files[filePath] = data
}

func (s *Storage) GetCwd() string {
	return s.basePath
}

func (s *Storage) GetObject(_ context.Context, filePath string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[filePath]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Storage) Exists(_ context.Context, fileName string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.files[fileName]
	return ok, nil
}
