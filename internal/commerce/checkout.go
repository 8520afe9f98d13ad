package commerce

import "context"

// CreateCheckout creates a hosted checkout and returns it.
func (c *Client) CreateCheckout(ctx context.Context, in CheckoutInput) (Checkout, error) {
	var resp struct {
		Payload *struct {
			Checkout           *Checkout   `json:"checkout"`
			CheckoutUserErrors []UserError `json:"checkoutUserErrors"`
		} `json:"checkoutCreate"`
	}

	input := map[string]any{"lineItems": in.LineItems}
	if in.Email != nil {
		input["email"] = *in.Email
	}
	if in.ShippingAddress != nil {
		addr := *in.ShippingAddress
		addr.ID = ""
		input["shippingAddress"] = addr
	}

	vars := map[string]any{"input": input, "language": in.Language}
	err := c.do(ctx, "CheckoutCreate", createCheckoutMutation, vars, &resp, func() []UserError {
		if resp.Payload == nil {
			return nil
		}
		return resp.Payload.CheckoutUserErrors
	})
	if err != nil {
		return Checkout{}, err
	}

	if resp.Payload == nil || resp.Payload.Checkout == nil || resp.Payload.Checkout.WebURL == "" {
		return Checkout{}, missing("CheckoutCreate", "checkout")
	}

	return *resp.Payload.Checkout, nil
}
