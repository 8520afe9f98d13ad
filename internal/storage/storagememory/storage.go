package storagememory

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

// Storage keeps values in process memory. Values never expire.
type Storage struct {
	cache *cache.Cache
}

func New() *Storage {
	return &Storage{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (s *Storage) Get(_ context.Context, key string) (string, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return "", serviceerr.ErrNotFound
	}

	str, ok := v.(string)
	if !ok {
		return "", serviceerr.ErrNotFound
	}

	return str, nil
}

func (s *Storage) Set(_ context.Context, key, value string) error {
	s.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Storage) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// Len returns the number of stored keys.
func (s *Storage) Len() int {
	return s.cache.ItemCount()
}
