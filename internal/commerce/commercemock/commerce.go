// Package commercemock is an in-memory stand-in for the remote Commerce API.
// It keeps carts, customers and tokens in maps and records every call.
package commercemock

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

const unitPrice = 10

type customer struct {
	id       string
	password string
	disabled bool
	email    string
	address  *commerce.MailingAddress
}

type Commerce struct {
	mu sync.Mutex

	carts     map[string]*commerce.Cart
	stock     map[string]int
	customers map[string]*customer
	tokens    map[string]string
	orders    int

	errs   map[string]error
	blocks map[string]chan struct{}
	calls  map[string]int
}

type Option func(*Commerce)

// WithStock sets the available quantity of a merchandise. Merchandise
// without stock defaults to 10 units.
func WithStock(merchandiseID string, n int) Option {
	return func(c *Commerce) {
		c.stock[merchandiseID] = n
	}
}

func WithCustomer(email, password string) Option {
	return func(c *Commerce) {
		c.customers[email] = &customer{id: "gid://shopify/Customer/" + email, email: email, password: password}
	}
}

func WithDisabledCustomer(email, password string) Option {
	return func(c *Commerce) {
		c.customers[email] = &customer{id: "gid://shopify/Customer/" + email, email: email, password: password, disabled: true}
	}
}

func WithDefaultAddress(email string, addr commerce.MailingAddress) Option {
	return func(c *Commerce) {
		if cu, ok := c.customers[email]; ok {
			cu.address = &addr
		}
	}
}

// WithToken registers a valid access token for an existing customer.
func WithToken(email, token string) Option {
	return func(c *Commerce) {
		c.tokens[token] = email
	}
}

// WithOrders gives every customer n orders.
func WithOrders(n int) Option {
	return func(c *Commerce) {
		c.orders = n
	}
}

// WithError makes every call of op fail with err.
func WithError(op string, err error) Option {
	return func(c *Commerce) {
		c.errs[op] = err
	}
}

// WithBlock makes every call of op wait until release is closed.
func WithBlock(op string, release chan struct{}) Option {
	return func(c *Commerce) {
		c.blocks[op] = release
	}
}

func New(opts ...Option) *Commerce {
	c := &Commerce{
		carts:     make(map[string]*commerce.Cart),
		stock:     make(map[string]int),
		customers: make(map[string]*customer),
		tokens:    make(map[string]string),
		errs:      make(map[string]error),
		blocks:    make(map[string]chan struct{}),
		calls:     make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calls returns how many times op was invoked.
func (c *Commerce) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Mutations returns the number of cart mutations issued.
func (c *Commerce) Mutations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls["AddCartLine"] + c.calls["UpdateCartLine"] + c.calls["RemoveCartLine"]
}

// SetError changes the failure of op after construction; nil clears it.
func (c *Commerce) SetError(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.errs, op)
		return
	}
	c.errs[op] = err
}

// ExpireCart forgets a cart, like the remote does after its retention period.
func (c *Commerce) ExpireCart(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.carts, id)
}

// TCart returns a copy of the remote cart.
func (c *Commerce) TCart(id string) (commerce.Cart, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cart, ok := c.carts[id]
	if !ok {
		return commerce.Cart{}, false
	}
	return cloneCart(cart), true
}

// TTokenValid reports whether token is currently accepted.
func (c *Commerce) TTokenValid(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.tokens[token]
	return ok
}

// enter records the call and returns the configured failure. It releases the
// lock while a blocked operation waits.
func (c *Commerce) enter(ctx context.Context, op string) error {
	c.mu.Lock()
	c.calls[op]++
	block := c.blocks[op]
	err := c.errs[op]
	c.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if err != nil {
		return err
	}

	return nil
}

func (c *Commerce) CreateCart(ctx context.Context) (string, error) {
	if err := c.enter(ctx, "CreateCart"); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := "gid://shopify/Cart/" + uuid.NewString()
	c.carts[id] = &commerce.Cart{ID: id, CheckoutURL: "https://shop.example/cart/c/" + id}

	return id, nil
}

func (c *Commerce) ValidateCart(ctx context.Context, cartID string) (string, error) {
	if err := c.enter(ctx, "ValidateCart"); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.carts[cartID]; !ok {
		return "", serviceerr.ErrNotFound
	}

	return cartID, nil
}

func (c *Commerce) Cart(ctx context.Context, cartID string, _ commerce.LanguageCode) (commerce.Cart, error) {
	if err := c.enter(ctx, "ViewCart"); err != nil {
		return commerce.Cart{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[cartID]
	if !ok {
		return commerce.Cart{}, serviceerr.ErrNotFound
	}

	return cloneCart(cart), nil
}

func (c *Commerce) AddCartLine(ctx context.Context, cartID, merchandiseID string) (commerce.Cart, error) {
	if err := c.enter(ctx, "AddCartLine"); err != nil {
		return commerce.Cart{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[cartID]
	if !ok {
		return commerce.Cart{}, serviceerr.ErrNotFound
	}

	available := c.available(merchandiseID)
	for i, line := range cart.Lines.Nodes {
		if line.Merchandise.ID != merchandiseID {
			continue
		}
		if line.Quantity+1 > available {
			return commerce.Cart{}, notEnoughInStock(available)
		}
		cart.Lines.Nodes[i].Quantity++
		recompute(cart)
		return cloneCart(cart), nil
	}

	if available < 1 {
		return commerce.Cart{}, notEnoughInStock(available)
	}

	cart.Lines.Nodes = append(cart.Lines.Nodes, commerce.CartLine{
		ID:       "gid://shopify/CartLine/" + uuid.NewString(),
		Quantity: 1,
		Merchandise: commerce.Merchandise{
			ID:                merchandiseID,
			QuantityAvailable: available,
			Price:             money(unitPrice),
		},
	})
	recompute(cart)

	return cloneCart(cart), nil
}

func (c *Commerce) UpdateCartLine(ctx context.Context, cartID, lineID string, quantity int) (commerce.Cart, error) {
	if err := c.enter(ctx, "UpdateCartLine"); err != nil {
		return commerce.Cart{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[cartID]
	if !ok {
		return commerce.Cart{}, serviceerr.ErrNotFound
	}

	for i, line := range cart.Lines.Nodes {
		if line.ID != lineID {
			continue
		}
		if available := c.available(line.Merchandise.ID); quantity > available {
			return commerce.Cart{}, notEnoughInStock(available)
		}
		if quantity == 0 {
			cart.Lines.Nodes = append(cart.Lines.Nodes[:i], cart.Lines.Nodes[i+1:]...)
		} else {
			cart.Lines.Nodes[i].Quantity = quantity
		}
		recompute(cart)
		return cloneCart(cart), nil
	}

	return commerce.Cart{}, commerce.UserErrors{{Code: commerce.CodeInvalid, Message: "line not found"}}
}

func (c *Commerce) RemoveCartLine(ctx context.Context, cartID, lineID string) (commerce.Cart, error) {
	if err := c.enter(ctx, "RemoveCartLine"); err != nil {
		return commerce.Cart{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[cartID]
	if !ok {
		return commerce.Cart{}, serviceerr.ErrNotFound
	}

	for i, line := range cart.Lines.Nodes {
		if line.ID == lineID {
			cart.Lines.Nodes = append(cart.Lines.Nodes[:i], cart.Lines.Nodes[i+1:]...)
			recompute(cart)
			return cloneCart(cart), nil
		}
	}

	return commerce.Cart{}, commerce.UserErrors{{Code: commerce.CodeInvalid, Message: "line not found"}}
}

func (c *Commerce) AttachBuyer(ctx context.Context, cartID, accessToken string) (commerce.Cart, error) {
	if err := c.enter(ctx, "AttachBuyer"); err != nil {
		return commerce.Cart{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[cartID]
	if !ok {
		return commerce.Cart{}, serviceerr.ErrNotFound
	}

	email, ok := c.tokens[accessToken]
	if !ok {
		return commerce.Cart{}, commerce.UserErrors{{Code: commerce.CodeTokenInvalid, Message: "Customer access token is invalid"}}
	}

	cu := c.customers[email]
	cart.BuyerIdentity = commerce.BuyerIdentity{
		Email:    &cu.email,
		Customer: &commerce.CustomerRef{ID: cu.id, Email: cu.email},
	}

	return cloneCart(cart), nil
}

func (c *Commerce) DetachBuyer(ctx context.Context, cartID string) (commerce.Cart, error) {
	if err := c.enter(ctx, "DetachBuyer"); err != nil {
		return commerce.Cart{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cart, ok := c.carts[cartID]
	if !ok {
		return commerce.Cart{}, serviceerr.ErrNotFound
	}
	cart.BuyerIdentity = commerce.BuyerIdentity{}

	return cloneCart(cart), nil
}

func (c *Commerce) CreateAccessToken(ctx context.Context, email, password string) (commerce.CustomerAccessToken, error) {
	if err := c.enter(ctx, "CustomerAccessTokenCreate"); err != nil {
		return commerce.CustomerAccessToken{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cu, ok := c.customers[email]
	if !ok || cu.password != password {
		return commerce.CustomerAccessToken{}, commerce.UserErrors{{Code: commerce.CodeUnidentifiedCustomer, Message: "Unidentified customer"}}
	}
	if cu.disabled {
		return commerce.CustomerAccessToken{}, commerce.UserErrors{{Code: commerce.CodeCustomerDisabled, Message: "Customer is disabled"}}
	}

	return c.issue(email), nil
}

func (c *Commerce) RenewAccessToken(ctx context.Context, accessToken string) (commerce.CustomerAccessToken, error) {
	if err := c.enter(ctx, "CustomerAccessTokenRenew"); err != nil {
		return commerce.CustomerAccessToken{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	email, ok := c.tokens[accessToken]
	if !ok {
		return commerce.CustomerAccessToken{}, commerce.UserErrors{{Code: commerce.CodeTokenInvalid, Message: "Customer access token is invalid"}}
	}
	delete(c.tokens, accessToken)

	return c.issue(email), nil
}

func (c *Commerce) DeleteAccessToken(ctx context.Context, accessToken string) (string, error) {
	if err := c.enter(ctx, "CustomerAccessTokenDelete"); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tokens[accessToken]; !ok {
		return "", commerce.UserErrors{{Code: commerce.CodeTokenInvalid, Message: "Customer access token is invalid"}}
	}
	delete(c.tokens, accessToken)

	return accessToken, nil
}

func (c *Commerce) CreateCustomer(ctx context.Context, in commerce.SignupInput) (string, error) {
	if err := c.enter(ctx, "CustomerCreate"); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.customers[in.Email]; ok {
		return "", commerce.UserErrors{{Code: commerce.CodeTaken, Field: []string{"input", "email"}, Message: "Email has already been taken"}}
	}

	cu := &customer{id: "gid://shopify/Customer/" + in.Email, email: in.Email, password: in.Password}
	c.customers[in.Email] = cu

	return cu.id, nil
}

func (c *Commerce) Customer(ctx context.Context, accessToken string) (commerce.Customer, error) {
	if err := c.enter(ctx, "Customer"); err != nil {
		return commerce.Customer{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cu, err := c.customerFor(accessToken)
	if err != nil {
		return commerce.Customer{}, err
	}

	email := cu.email
	return commerce.Customer{ID: cu.id, Email: &email, DefaultAddress: cu.address}, nil
}

// CustomerOrders pages over WithOrders orders. Cursors are the decimal index
// of an order.
func (c *Commerce) CustomerOrders(ctx context.Context, accessToken string, page commerce.PageVariables) (commerce.Connection[commerce.Order], error) {
	if err := c.enter(ctx, "CustomerOrders"); err != nil {
		return commerce.Connection[commerce.Order]{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.customerFor(accessToken); err != nil {
		return commerce.Connection[commerce.Order]{}, err
	}

	return paginate(c.orders, page, func(i int) commerce.Order {
		return commerce.Order{ID: fmt.Sprintf("gid://shopify/Order/%d", i), OrderNumber: 1000 + i, CurrentTotalPrice: money(unitPrice)}
	})
}

func (c *Commerce) CustomerAddresses(ctx context.Context, accessToken string, page commerce.PageVariables) (commerce.Connection[commerce.MailingAddress], error) {
	if err := c.enter(ctx, "CustomerAddresses"); err != nil {
		return commerce.Connection[commerce.MailingAddress]{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cu, err := c.customerFor(accessToken)
	if err != nil {
		return commerce.Connection[commerce.MailingAddress]{}, err
	}

	n := 0
	if cu.address != nil {
		n = 1
	}

	return paginate(n, page, func(int) commerce.MailingAddress { return *cu.address })
}

func (c *Commerce) CreateCheckout(ctx context.Context, in commerce.CheckoutInput) (commerce.Checkout, error) {
	if err := c.enter(ctx, "CheckoutCreate"); err != nil {
		return commerce.Checkout{}, err
	}

	if len(in.LineItems) == 0 {
		return commerce.Checkout{}, commerce.UserErrors{{Code: "BLANK", Message: "Line items can't be blank"}}
	}

	id := uuid.NewString()
	return commerce.Checkout{ID: "gid://shopify/Checkout/" + id, WebURL: "https://shop.example/checkouts/" + id}, nil
}

func (c *Commerce) CollectionProducts(ctx context.Context, v commerce.CatalogVariables) (commerce.Collection, error) {
	if err := c.enter(ctx, "CollectionProducts"); err != nil {
		return commerce.Collection{}, err
	}

	products, err := paginate(25, v.PageVariables, func(i int) commerce.Product {
		return commerce.Product{ID: fmt.Sprintf("gid://shopify/Product/%d", i), Handle: fmt.Sprintf("%s-%d", v.Handle, i)}
	})
	if err != nil {
		return commerce.Collection{}, err
	}

	return commerce.Collection{ID: "gid://shopify/Collection/" + v.Handle, Handle: v.Handle, Products: products}, nil
}

func (c *Commerce) customerFor(accessToken string) (*customer, error) {
	email, ok := c.tokens[accessToken]
	if !ok {
		return nil, serviceerr.ErrNotFound
	}
	return c.customers[email], nil
}

func (c *Commerce) issue(email string) commerce.CustomerAccessToken {
	token := uuid.NewString()
	c.tokens[token] = email
	return commerce.CustomerAccessToken{AccessToken: token, ExpiresAt: time.Now().Add(24 * time.Hour).UTC()}
}

func (c *Commerce) available(merchandiseID string) int {
	if n, ok := c.stock[merchandiseID]; ok {
		return n
	}
	return 10
}

func notEnoughInStock(available int) commerce.UserErrors {
	return commerce.UserErrors{{
		Code:    commerce.CodeNotEnoughInStock,
		Message: fmt.Sprintf("Only %d items were added to your cart due to availability.", available),
	}}
}

func recompute(cart *commerce.Cart) {
	total := 0
	for i, line := range cart.Lines.Nodes {
		total += line.Quantity
		cart.Lines.Nodes[i].Cost = commerce.CartLineCost{
			AmountPerQuantity: money(unitPrice),
			TotalAmount:       money(unitPrice * line.Quantity),
		}
	}
	cart.TotalQuantity = total
	cart.Cost = commerce.CartCost{SubtotalAmount: money(unitPrice * total), TotalAmount: money(unitPrice * total)}
}

func money(amount int) commerce.Money {
	return commerce.Money{Amount: strconv.Itoa(amount) + ".0", CurrencyCode: "USD"}
}

func cloneCart(cart *commerce.Cart) commerce.Cart {
	out := *cart
	out.Lines.Nodes = append([]commerce.CartLine(nil), cart.Lines.Nodes...)
	return out
}

// paginate slices n generated items according to page. Cursors are item
// indexes.
func paginate[T any](n int, page commerce.PageVariables, item func(int) T) (commerce.Connection[T], error) {
	start, end := 0, n

	switch {
	case page.First != nil:
		if page.After != nil {
			after, err := strconv.Atoi(*page.After)
			if err != nil {
				return commerce.Connection[T]{}, fmt.Errorf("invalid cursor %q", *page.After)
			}
			start = after + 1
		}
		end = min(start+*page.First, n)
	case page.Last != nil:
		if page.Before != nil {
			before, err := strconv.Atoi(*page.Before)
			if err != nil {
				return commerce.Connection[T]{}, fmt.Errorf("invalid cursor %q", *page.Before)
			}
			end = before
		}
		start = max(end-*page.Last, 0)
	}
	start = min(start, n)
	end = max(end, start)

	var conn commerce.Connection[T]
	for i := start; i < end; i++ {
		conn.Nodes = append(conn.Nodes, item(i))
	}
	conn.PageInfo.HasPreviousPage = start > 0
	conn.PageInfo.HasNextPage = end < n
	if end > start {
		first, last := strconv.Itoa(start), strconv.Itoa(end-1)
		conn.PageInfo.StartCursor = &first
		conn.PageInfo.EndCursor = &last
	}

	return conn, nil
}
