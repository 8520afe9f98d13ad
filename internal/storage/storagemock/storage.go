package storagemock

import (
	"context"
	"sync"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

type StorageOption func(*Storage)

func WithValue(key, value string) StorageOption {
	return func(s *Storage) { s.values[key] = value }
}
func WithGetError(err error) StorageOption {
	return func(s *Storage) { s.getErr = err }
}
func WithSetError(err error) StorageOption {
	return func(s *Storage) { s.setErr = err }
}

// Storage is an in-memory storage that records every write.
type Storage struct {
	mu     sync.Mutex
	values map[string]string
	writes int

	getErr, setErr error
}

func New(opts ...StorageOption) *Storage {
	s := &Storage{values: make(map[string]string)}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", serviceerr.ErrNotFound
	}
	return v, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.setErr != nil {
		return s.setErr
	}
	s.writes++
	s.values[key] = value
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	delete(s.values, key)
	return nil
}

// TGet is a helper method for tests to read a value without error handling.
func (s *Storage) TGet(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// TWrites returns the number of Set and Delete calls.
func (s *Storage) TWrites() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}
