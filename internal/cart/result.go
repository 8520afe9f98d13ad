package cart

import (
	"errors"

	"github.com/openkcm/storefront-sync/internal/commerce"
)

// Result is the outcome of a mutating cart operation. The refresh that
// follows every attempted mutation is reported separately from the mutation
// itself, so a failed mutation still carries the reconciled cart.
type Result struct {
	Cart commerce.Cart
	// Refreshed is false when the operation was rejected locally and nothing
	// was sent to the remote.
	Refreshed  bool
	MutateErr  error
	RefreshErr error
}

// Err returns the combined error of the mutation and the refresh.
func (r Result) Err() error {
	return errors.Join(r.MutateErr, r.RefreshErr)
}
