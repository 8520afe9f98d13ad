// Package cart holds the local cart store: the last cart snapshot fetched
// from the remote and the mutating actions that keep it in sync.
//
// Every mutating action is single-flight. An action that reaches the remote
// is always followed by a refresh of the authoritative cart, whatever the
// outcome of the mutation; actions rejected locally never reach the remote.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/guard"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage"
)

// Remote is the part of the Commerce API the cart store depends on.
type Remote interface {
	CreateCart(ctx context.Context) (string, error)
	ValidateCart(ctx context.Context, cartID string) (string, error)
	Cart(ctx context.Context, cartID string, lang commerce.LanguageCode) (commerce.Cart, error)
	AddCartLine(ctx context.Context, cartID, merchandiseID string) (commerce.Cart, error)
	UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (commerce.Cart, error)
	RemoveCartLine(ctx context.Context, cartID, lineID string) (commerce.Cart, error)
	AttachBuyer(ctx context.Context, cartID, accessToken string) (commerce.Cart, error)
	DetachBuyer(ctx context.Context, cartID string) (commerce.Cart, error)
}

type Store struct {
	remote  Remote
	storage storage.Storage
	guard   *guard.Guard

	mu       sync.RWMutex
	id       string
	lang     commerce.LanguageCode
	snapshot *commerce.Cart
}

func NewStore(remote Remote, st storage.Storage, lang commerce.LanguageCode) *Store {
	if lang == "" {
		lang = commerce.LanguageEN
	}

	return &Store{
		remote:  remote,
		storage: st,
		guard:   guard.New(),
		lang:    lang,
	}
}

// Snapshot returns the last fetched cart. ok is false until the first
// successful refresh.
func (s *Store) Snapshot() (_ commerce.Cart, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return commerce.Cart{}, false
	}
	return *s.snapshot, true
}

func (s *Store) State() guard.State {
	return s.guard.State()
}

func (s *Store) Language() commerce.LanguageCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lang
}

// Refresh replaces the snapshot with the authoritative remote cart.
func (s *Store) Refresh(ctx context.Context) (commerce.Cart, error) {
	release, err := s.guard.Enter()
	if err != nil {
		return commerce.Cart{}, err
	}
	defer release()

	return s.refresh(ctx)
}

// SetLanguage changes the language carts are fetched in. A change of
// language refreshes the cart.
func (s *Store) SetLanguage(ctx context.Context, lang commerce.LanguageCode) (commerce.Cart, error) {
	release, err := s.guard.Enter()
	if err != nil {
		return commerce.Cart{}, err
	}
	defer release()

	s.mu.Lock()
	changed := s.lang != lang
	s.lang = lang
	s.mu.Unlock()

	if !changed {
		snapshot, _ := s.Snapshot()
		return snapshot, nil
	}

	return s.refresh(ctx)
}

// Add adds one unit of m to the cart. It is rejected locally while the
// cart has not been loaded, when the cart holds MaxLines lines, or when the
// line already holds as much as stock or MaxLineQuantity permit.
func (s *Store) Add(ctx context.Context, m Merchandise) Result {
	return s.mutate(ctx, "add",
		func(snapshot commerce.Cart) error {
			return CheckAdd(snapshot, m)
		},
		func(ctx context.Context, cartID string) (commerce.Cart, error) {
			return s.remote.AddCartLine(ctx, cartID, m.ID)
		},
	)
}

// Edit sets the quantity of a line.
func (s *Store) Edit(ctx context.Context, lineID string, quantity int) Result {
	return s.mutate(ctx, "edit",
		func(snapshot commerce.Cart) error {
			return CheckEdit(snapshot, lineID, quantity)
		},
		func(ctx context.Context, cartID string) (commerce.Cart, error) {
			return s.remote.UpdateCartLine(ctx, cartID, lineID, quantity)
		},
	)
}

// Delete removes a line.
func (s *Store) Delete(ctx context.Context, lineID string) Result {
	return s.mutate(ctx, "delete",
		func(snapshot commerce.Cart) error {
			return CheckDelete(snapshot, lineID)
		},
		func(ctx context.Context, cartID string) (commerce.Cart, error) {
			return s.remote.RemoveCartLine(ctx, cartID, lineID)
		},
	)
}

// AttachUser associates the cart with the customer owning accessToken. The
// snapshot is replaced by the mutation response; no refresh follows.
func (s *Store) AttachUser(ctx context.Context, accessToken string) (commerce.Cart, error) {
	return s.buyer(ctx, "attachUser", func(ctx context.Context, cartID string) (commerce.Cart, error) {
		return s.remote.AttachBuyer(ctx, cartID, accessToken)
	})
}

// DetachUser clears the buyer identity of the cart. The snapshot is replaced
// by the mutation response; no refresh follows.
func (s *Store) DetachUser(ctx context.Context) (commerce.Cart, error) {
	return s.buyer(ctx, "detachUser", s.remote.DetachBuyer)
}

// Wipe discards the persisted cart id and refreshes, which acquires a new
// empty cart.
func (s *Store) Wipe(ctx context.Context) Result {
	release, err := s.guard.Enter()
	if err != nil {
		return Result{MutateErr: err}
	}
	defer release()

	slogctx.Debug(ctx, "Wiping cart")

	res := Result{MutateErr: s.forget(ctx)}
	res.Cart, res.RefreshErr = s.refresh(ctx)
	res.Refreshed = true

	return res
}

func (s *Store) mutate(
	ctx context.Context,
	op string,
	check func(commerce.Cart) error,
	call func(ctx context.Context, cartID string) (commerce.Cart, error),
) Result {
	release, err := s.guard.Enter()
	if err != nil {
		return Result{MutateErr: err}
	}
	defer release()

	ctx = slogctx.With(ctx, "operation", op)

	snapshot, ok := s.Snapshot()
	if !ok {
		return Result{MutateErr: serviceerr.ErrCartNotReady}
	}
	if err := check(snapshot); err != nil {
		return Result{Cart: snapshot, MutateErr: err}
	}

	var res Result

	cartID, err := s.cartID(ctx)
	if err == nil {
		var updated commerce.Cart
		updated, err = call(ctx, cartID)
		if err == nil {
			s.setSnapshot(updated)
		}
	}
	if err != nil {
		slogctx.Error(ctx, "Cart mutation failed", "error", err)
		res.MutateErr = fmt.Errorf("%s: %w", op, err)
	}

	res.Cart, res.RefreshErr = s.refresh(ctx)
	res.Refreshed = true
	if res.RefreshErr != nil {
		res.Cart, _ = s.Snapshot()
	}

	return res
}

func (s *Store) buyer(ctx context.Context, op string, call func(ctx context.Context, cartID string) (commerce.Cart, error)) (commerce.Cart, error) {
	release, err := s.guard.Enter()
	if err != nil {
		return commerce.Cart{}, err
	}
	defer release()

	ctx = slogctx.With(ctx, "operation", op)

	cartID, err := s.cartID(ctx)
	if err != nil {
		return commerce.Cart{}, err
	}

	updated, err := call(ctx, cartID)
	if err != nil {
		slogctx.Error(ctx, "Updating buyer identity failed", "error", err)
		return commerce.Cart{}, fmt.Errorf("%s: %w", op, err)
	}
	s.setSnapshot(updated)

	return updated, nil
}

// refresh must be called with the guard held.
func (s *Store) refresh(ctx context.Context) (commerce.Cart, error) {
	cartID, err := s.cartID(ctx)
	if err != nil {
		return commerce.Cart{}, fmt.Errorf("refresh: %w", err)
	}

	cart, err := s.remote.Cart(ctx, cartID, s.Language())
	if err != nil {
		if errors.Is(err, serviceerr.ErrNotFound) {
			slogctx.Warn(ctx, "Cart disappeared remotely, discarding its id", "cartID", cartID)
			if err := s.forget(ctx); err != nil {
				slogctx.Error(ctx, "Failed to discard cart id", "error", err)
			}
		}
		return commerce.Cart{}, fmt.Errorf("refresh: %w", err)
	}

	s.setSnapshot(cart)
	slogctx.Debug(ctx, "Refreshed cart", "cartID", cart.ID, "lines", len(cart.Lines.Nodes))

	return cart, nil
}

func (s *Store) setSnapshot(cart commerce.Cart) {
	s.mu.Lock()
	s.snapshot = &cart
	s.mu.Unlock()
}
