package storefront

import (
	"context"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

// Checkout creates a hosted checkout for the current cart, wipes the cart
// and returns the checkout URL. A logged-in customer's email and default
// address are prefilled.
func (c *Client) Checkout(ctx context.Context) (string, error) {
	snapshot, ok := c.cart.Snapshot()
	if !ok {
		return "", serviceerr.ErrCartNotReady
	}
	if len(snapshot.Lines.Nodes) == 0 {
		return "", serviceerr.ErrEmptyCart
	}

	in := commerce.CheckoutInput{Language: c.cart.Language()}
	for _, line := range snapshot.Lines.Nodes {
		in.LineItems = append(in.LineItems, commerce.CheckoutLineItem{
			VariantID: line.Merchandise.ID,
			Quantity:  line.Quantity,
		})
	}

	if session, ok := c.auth.Session(); ok {
		customer, err := c.remote.Customer(ctx, session.Token)
		if err != nil {
			c.recorder.operation(ctx, "checkout", "create", err)
			return "", fmt.Errorf("fetching customer for checkout: %w", err)
		}
		in.Email = customer.Email
		in.ShippingAddress = customer.DefaultAddress
	}

	checkout, err := c.remote.CreateCheckout(ctx, in)
	c.recorder.operation(ctx, "checkout", "create", err)
	if err != nil {
		return "", err
	}

	if res := c.WipeCart(ctx); res.Err() != nil {
		slogctx.Error(ctx, "Failed to wipe cart after checkout", "error", res.Err())
	}

	return checkout.WebURL, nil
}
