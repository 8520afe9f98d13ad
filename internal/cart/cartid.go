package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage"
)

// cartID returns the id of the remote cart, acquiring it on first use: the
// persisted id is validated remotely and replaced by a newly created cart if
// it is missing or no longer valid. Must be called with the guard held.
func (s *Store) cartID(ctx context.Context) (string, error) {
	s.mu.RLock()
	id := s.id
	s.mu.RUnlock()
	if id != "" {
		return id, nil
	}

	stored, err := s.storage.Get(ctx, storage.KeyCartID)
	switch {
	case err == nil:
	case errors.Is(err, serviceerr.ErrNotFound):
		stored = ""
	default:
		slogctx.Warn(ctx, "Failed to read persisted cart id", "error", err)
		stored = ""
	}

	if stored = strings.TrimSpace(stored); stored != "" {
		valid, err := s.remote.ValidateCart(ctx, stored)
		if err == nil && valid != "" {
			s.setID(valid)
			return valid, nil
		}
		slogctx.Info(ctx, "Persisted cart is no longer valid, creating a new one", "cartID", stored, "error", err)
	}

	created, err := s.remote.CreateCart(ctx)
	if err != nil {
		return "", fmt.Errorf("creating cart: %w", err)
	}

	if err := s.storage.Set(ctx, storage.KeyCartID, created); err != nil {
		slogctx.Error(ctx, "Failed to persist cart id", "cartID", created, "error", err)
	}
	s.setID(created)

	slogctx.Debug(ctx, "Created cart", "cartID", created)

	return created, nil
}

func (s *Store) setID(id string) {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
}

// forget drops the cart id from memory and storage so the next access
// acquires a new one.
func (s *Store) forget(ctx context.Context) error {
	s.setID("")

	if err := s.storage.Delete(ctx, storage.KeyCartID); err != nil {
		return fmt.Errorf("deleting persisted cart id: %w", err)
	}
	return nil
}
