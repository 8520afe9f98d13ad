package cart

import (
	"fmt"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

const (
	// MaxLines is the number of distinct lines a cart may hold.
	MaxLines = 100
	// MaxLineQuantity is the per-line quantity cap, independent of stock.
	MaxLineQuantity = 10
)

// Merchandise identifies a product variant together with the stock the
// caller last saw for it.
type Merchandise struct {
	ID                string
	QuantityAvailable int
}

// QuantityInCart returns the quantity of merchandiseID held by cart.
func QuantityInCart(cart commerce.Cart, merchandiseID string) int {
	for _, line := range cart.Lines.Nodes {
		if line.Merchandise.ID == merchandiseID {
			return line.Quantity
		}
	}
	return 0
}

// LimitReached reports whether no further unit may be added to a line
// holding inCart units of merchandise with the given stock.
func LimitReached(inCart, available int) bool {
	return inCart >= available || inCart >= MaxLineQuantity
}

// CheckAdd validates adding one unit of m to cart.
func CheckAdd(cart commerce.Cart, m Merchandise) error {
	if len(cart.Lines.Nodes) >= MaxLines {
		return serviceerr.ErrCartFull
	}

	if LimitReached(QuantityInCart(cart, m.ID), m.QuantityAvailable) {
		return serviceerr.ErrLimitExceeded
	}

	return nil
}

// CheckEdit validates setting the quantity of lineID to quantity.
func CheckEdit(cart commerce.Cart, lineID string, quantity int) error {
	if quantity < 1 || quantity > MaxLineQuantity {
		return fmt.Errorf("quantity %d not in 1..%d: %w", quantity, MaxLineQuantity, serviceerr.ErrInvalidQuantity)
	}

	line, ok := findLine(cart, lineID)
	if !ok {
		return fmt.Errorf("line %q: %w", lineID, serviceerr.ErrNotFound)
	}

	if quantity > line.Quantity && quantity > line.Merchandise.QuantityAvailable {
		return serviceerr.ErrLimitExceeded
	}

	return nil
}

// CheckDelete validates removing lineID from cart.
func CheckDelete(cart commerce.Cart, lineID string) error {
	if _, ok := findLine(cart, lineID); !ok {
		return fmt.Errorf("line %q: %w", lineID, serviceerr.ErrNotFound)
	}
	return nil
}

func findLine(cart commerce.Cart, lineID string) (commerce.CartLine, bool) {
	for _, line := range cart.Lines.Nodes {
		if line.ID == lineID {
			return line, true
		}
	}
	return commerce.CartLine{}, false
}
