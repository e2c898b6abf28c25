package storage

import (
	"fmt"
	"io"
	"sync"
)

// MemoryStorage is a development and test fallback used when no S3 bucket is
// configured. Objects live in process memory and URLs are synthetic.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		objects: make(map[string][]byte),
		baseURL: baseURL,
	}
}

func (s *MemoryStorage) Save(path string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return nil
}

func (s *MemoryStorage) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, path)
	return nil
}

func (s *MemoryStorage) URL(path string) string {
	return fmt.Sprintf("%s/media/%s", s.baseURL, path)
}

// Has reports whether an object exists, for tests.
func (s *MemoryStorage) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[path]
	return ok
}
