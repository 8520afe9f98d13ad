// Package commerce is a typed client for the remote Commerce API. It owns no
// state: every method is a single request against the storefront GraphQL
// endpoint.
package commerce

import (
	"context"
	"errors"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/graphql"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

const StorefrontTokenHeader = "X-Shopify-Storefront-Access-Token"

type Client struct {
	gql *graphql.Client
}

func NewClient(gql *graphql.Client) *Client {
	return &Client{gql: gql}
}

// do executes an operation and classifies the outcome. User errors collected
// by userErrs take priority over transport errors of the same response.
func (c *Client) do(ctx context.Context, op, query string, vars map[string]any, out any, userErrs func() []UserError) error {
	err := c.gql.Do(ctx, query, vars, out)

	if userErrs != nil {
		if list := userErrs(); len(list) > 0 {
			slogctx.Debug(ctx, "Commerce API reported user errors", "operation", op, "code", list[0].Code)
			return UserErrors(list)
		}
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, err)
		}

		slogctx.Error(ctx, "Commerce API request failed", "operation", op, "error", err)
		return fmt.Errorf("%s: %w: %w", op, serviceerr.ErrUnexpected, err)
	}

	return nil
}

// missing is returned when the response lacks the payload an operation
// depends on.
func missing(op, what string) error {
	return fmt.Errorf("%s: %w: missing %s", op, serviceerr.ErrUnexpected, what)
}

// CreateCart creates an empty cart and returns its id.
func (c *Client) CreateCart(ctx context.Context) (string, error) {
	var resp struct {
		CartCreate *struct {
			Cart       *struct{ ID string } `json:"cart"`
			UserErrors []UserError          `json:"userErrors"`
		} `json:"cartCreate"`
	}

	err := c.do(ctx, "CreateCart", createCartMutation, nil, &resp, func() []UserError {
		if resp.CartCreate == nil {
			return nil
		}
		return resp.CartCreate.UserErrors
	})
	if err != nil {
		return "", err
	}

	if resp.CartCreate == nil || resp.CartCreate.Cart == nil || resp.CartCreate.Cart.ID == "" {
		return "", missing("CreateCart", "cart")
	}

	return resp.CartCreate.Cart.ID, nil
}

// ValidateCart checks that the cart still exists remotely. It returns
// serviceerr.ErrNotFound for unknown or expired carts.
func (c *Client) ValidateCart(ctx context.Context, cartID string) (string, error) {
	var resp struct {
		Cart *struct{ ID string } `json:"cart"`
	}

	err := c.do(ctx, "ValidateCart", validateCartQuery, map[string]any{"cartId": cartID}, &resp, nil)
	if err != nil {
		return "", err
	}

	if resp.Cart == nil || resp.Cart.ID == "" {
		return "", fmt.Errorf("ValidateCart: %w", serviceerr.ErrNotFound)
	}

	return resp.Cart.ID, nil
}

// Cart fetches the authoritative cart in the given language.
func (c *Client) Cart(ctx context.Context, cartID string, lang LanguageCode) (Cart, error) {
	var resp struct {
		Cart *Cart `json:"cart"`
	}

	vars := map[string]any{"cartId": cartID, "language": lang}
	if err := c.do(ctx, "ViewCart", viewCartQuery, vars, &resp, nil); err != nil {
		return Cart{}, err
	}

	if resp.Cart == nil {
		return Cart{}, fmt.Errorf("ViewCart: %w", serviceerr.ErrNotFound)
	}

	return *resp.Cart, nil
}

type cartPayload struct {
	Cart       *Cart       `json:"cart"`
	UserErrors []UserError `json:"userErrors"`
}

func (c *Client) cartMutation(ctx context.Context, op, field, query string, vars map[string]any) (Cart, error) {
	var resp map[string]*cartPayload

	err := c.do(ctx, op, query, vars, &resp, func() []UserError {
		if p := resp[field]; p != nil {
			return p.UserErrors
		}
		return nil
	})
	if err != nil {
		return Cart{}, err
	}

	p := resp[field]
	if p == nil || p.Cart == nil {
		return Cart{}, missing(op, "cart")
	}

	return *p.Cart, nil
}

// AddCartLine adds one unit of the merchandise as a new cart line.
func (c *Client) AddCartLine(ctx context.Context, cartID, merchandiseID string) (Cart, error) {
	return c.cartMutation(ctx, "AddCartLine", "cartLinesAdd", addCartLineMutation, map[string]any{
		"cartId": cartID,
		"lines":  []map[string]any{{"merchandiseId": merchandiseID, "quantity": 1}},
	})
}

// UpdateCartLine sets the quantity of an existing line.
func (c *Client) UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (Cart, error) {
	return c.cartMutation(ctx, "UpdateCartLine", "cartLinesUpdate", updateCartLineMutation, map[string]any{
		"cartId": cartID,
		"lines":  []map[string]any{{"id": lineID, "quantity": quantity}},
	})
}

func (c *Client) RemoveCartLine(ctx context.Context, cartID, lineID string) (Cart, error) {
	return c.cartMutation(ctx, "RemoveCartLine", "cartLinesRemove", removeCartLineMutation, map[string]any{
		"cartId":  cartID,
		"lineIds": []string{lineID},
	})
}

// AttachBuyer associates the cart with the customer owning accessToken.
func (c *Client) AttachBuyer(ctx context.Context, cartID, accessToken string) (Cart, error) {
	return c.cartMutation(ctx, "AttachBuyer", "cartBuyerIdentityUpdate", updateBuyerIdentityMutation, map[string]any{
		"cartId":        cartID,
		"buyerIdentity": map[string]any{"customerAccessToken": accessToken},
	})
}

// DetachBuyer clears the buyer identity of the cart.
func (c *Client) DetachBuyer(ctx context.Context, cartID string) (Cart, error) {
	return c.cartMutation(ctx, "DetachBuyer", "cartBuyerIdentityUpdate", updateBuyerIdentityMutation, map[string]any{
		"cartId":        cartID,
		"buyerIdentity": map[string]any{"customerAccessToken": nil},
	})
}
