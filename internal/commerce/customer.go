package commerce

import (
	"context"
	"fmt"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

type tokenPayload struct {
	CustomerAccessToken *CustomerAccessToken `json:"customerAccessToken"`
	UserErrors          []UserError          `json:"userErrors"`
	CustomerUserErrors  []UserError          `json:"customerUserErrors"`
}

func (p *tokenPayload) errs() []UserError {
	if p == nil {
		return nil
	}
	if len(p.CustomerUserErrors) > 0 {
		return p.CustomerUserErrors
	}
	return p.UserErrors
}

// CreateAccessToken logs a customer in.
func (c *Client) CreateAccessToken(ctx context.Context, email, password string) (CustomerAccessToken, error) {
	var resp struct {
		Payload *tokenPayload `json:"customerAccessTokenCreate"`
	}

	vars := map[string]any{"input": map[string]any{"email": email, "password": password}}
	err := c.do(ctx, "CustomerAccessTokenCreate", createAccessTokenMutation, vars, &resp, func() []UserError {
		return resp.Payload.errs()
	})
	if err != nil {
		return CustomerAccessToken{}, err
	}

	if resp.Payload == nil || resp.Payload.CustomerAccessToken == nil {
		return CustomerAccessToken{}, missing("CustomerAccessTokenCreate", "access token")
	}

	return *resp.Payload.CustomerAccessToken, nil
}

// RenewAccessToken extends the validity of a token and returns the renewed one.
func (c *Client) RenewAccessToken(ctx context.Context, accessToken string) (CustomerAccessToken, error) {
	var resp struct {
		Payload *tokenPayload `json:"customerAccessTokenRenew"`
	}

	vars := map[string]any{"customerAccessToken": accessToken}
	err := c.do(ctx, "CustomerAccessTokenRenew", renewAccessTokenMutation, vars, &resp, func() []UserError {
		return resp.Payload.errs()
	})
	if err != nil {
		return CustomerAccessToken{}, err
	}

	if resp.Payload == nil || resp.Payload.CustomerAccessToken == nil {
		return CustomerAccessToken{}, missing("CustomerAccessTokenRenew", "access token")
	}

	return *resp.Payload.CustomerAccessToken, nil
}

// DeleteAccessToken invalidates a token remotely and returns the deleted token.
func (c *Client) DeleteAccessToken(ctx context.Context, accessToken string) (string, error) {
	var resp struct {
		Payload *struct {
			DeletedAccessToken *string     `json:"deletedAccessToken"`
			UserErrors         []UserError `json:"userErrors"`
		} `json:"customerAccessTokenDelete"`
	}

	vars := map[string]any{"customerAccessToken": accessToken}
	err := c.do(ctx, "CustomerAccessTokenDelete", deleteAccessTokenMutation, vars, &resp, func() []UserError {
		if resp.Payload == nil {
			return nil
		}
		return resp.Payload.UserErrors
	})
	if err != nil {
		return "", err
	}

	if resp.Payload == nil || resp.Payload.DeletedAccessToken == nil {
		return "", missing("CustomerAccessTokenDelete", "deleted access token")
	}

	return *resp.Payload.DeletedAccessToken, nil
}

// CreateCustomer registers a new customer and returns its id. It does not log
// the customer in.
func (c *Client) CreateCustomer(ctx context.Context, in SignupInput) (string, error) {
	var resp struct {
		Payload *struct {
			Customer           *struct{ ID string } `json:"customer"`
			CustomerUserErrors []UserError          `json:"customerUserErrors"`
		} `json:"customerCreate"`
	}

	vars := map[string]any{"input": in}
	err := c.do(ctx, "CustomerCreate", createCustomerMutation, vars, &resp, func() []UserError {
		if resp.Payload == nil {
			return nil
		}
		return resp.Payload.CustomerUserErrors
	})
	if err != nil {
		return "", err
	}

	if resp.Payload == nil || resp.Payload.Customer == nil {
		return "", missing("CustomerCreate", "customer")
	}

	return resp.Payload.Customer.ID, nil
}

// Customer returns the customer owning accessToken.
func (c *Client) Customer(ctx context.Context, accessToken string) (Customer, error) {
	var resp struct {
		Customer *Customer `json:"customer"`
	}

	vars := map[string]any{"customerAccessToken": accessToken}
	if err := c.do(ctx, "Customer", customerQuery, vars, &resp, nil); err != nil {
		return Customer{}, err
	}

	if resp.Customer == nil {
		return Customer{}, fmt.Errorf("Customer: %w", serviceerr.ErrNotFound)
	}

	return *resp.Customer, nil
}

// PageVariables are the cursor variables of a paginated query. Exactly one
// of First/After and Last/Before is set.
type PageVariables struct {
	First  *int    `json:"first"`
	Last   *int    `json:"last"`
	After  *string `json:"after"`
	Before *string `json:"before"`
}

func (v PageVariables) apply(vars map[string]any) map[string]any {
	vars["first"] = v.First
	vars["last"] = v.Last
	vars["after"] = v.After
	vars["before"] = v.Before
	return vars
}

// CustomerOrders returns a page of the customer's orders, newest first.
func (c *Client) CustomerOrders(ctx context.Context, accessToken string, page PageVariables) (Connection[Order], error) {
	var resp struct {
		Customer *struct {
			Orders Connection[Order] `json:"orders"`
		} `json:"customer"`
	}

	vars := page.apply(map[string]any{"customerAccessToken": accessToken})
	if err := c.do(ctx, "CustomerOrders", customerOrdersQuery, vars, &resp, nil); err != nil {
		return Connection[Order]{}, err
	}

	if resp.Customer == nil {
		return Connection[Order]{}, fmt.Errorf("CustomerOrders: %w", serviceerr.ErrNotFound)
	}

	return resp.Customer.Orders, nil
}

// CustomerAddresses returns a page of the customer's addresses.
func (c *Client) CustomerAddresses(ctx context.Context, accessToken string, page PageVariables) (Connection[MailingAddress], error) {
	var resp struct {
		Customer *struct {
			Addresses Connection[MailingAddress] `json:"addresses"`
		} `json:"customer"`
	}

	vars := page.apply(map[string]any{"customerAccessToken": accessToken})
	if err := c.do(ctx, "CustomerAddresses", customerAddressesQuery, vars, &resp, nil); err != nil {
		return Connection[MailingAddress]{}, err
	}

	if resp.Customer == nil {
		return Connection[MailingAddress]{}, fmt.Errorf("CustomerAddresses: %w", serviceerr.ErrNotFound)
	}

	return resp.Customer.Addresses, nil
}
