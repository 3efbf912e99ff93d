package fssvc

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/trezcool/kazi/core"
)

const memScheme = "mem://"

// MemStore keeps blobs in process memory. It backs local dev runs without
// OSS credentials and the test suites.
type MemStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	putErr error
}

var _ core.FileStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

// FailPutWith makes every subsequent Put fail with err; pass nil to heal.
func (s *MemStore) FailPutWith(err error) {
	s.mu.Lock()
	s.putErr = err
	s.mu.Unlock()
}

func (s *MemStore) Put(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.putErr != nil {
		return "", core.NewStorageError("storing "+key, s.putErr)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", core.NewStorageError("storing "+key, err)
	}
	s.blobs[key] = data
	return s.PublicURL(key), nil
}

func (s *MemStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, strings.TrimPrefix(url, memScheme))
	return nil
}

func (s *MemStore) PublicURL(key string) string {
	return memScheme + key
}

// Blob returns the stored content for a previously returned url.
func (s *MemStore) Blob(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.blobs[strings.TrimPrefix(url, memScheme)]
	return data, ok
}
