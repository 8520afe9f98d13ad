package storagevalkey

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

const objectType = "storage"

type Storage struct {
	valkey valkey.Client
	prefix string
}

func New(valkeyClient valkey.Client, prefix string) *Storage {
	prefix = strings.TrimSuffix(prefix, ":")
	return &Storage{
		valkey: valkeyClient,
		prefix: prefix,
	}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.valkey.Do(ctx, s.valkey.B().Get().Key(s.key(key)).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", serviceerr.ErrNotFound
		}

		return "", fmt.Errorf("executing get command: %w", err)
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Set().Key(s.key(key)).Value(value).Build()).Error(); err != nil {
		return fmt.Errorf("executing set command: %w", err)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if err := s.valkey.Do(ctx, s.valkey.B().Del().Key(s.key(key)).Build()).Error(); err != nil {
		return fmt.Errorf("executing del command: %w", err)
	}

	return nil
}

func (s *Storage) key(key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, objectType, key)
}
