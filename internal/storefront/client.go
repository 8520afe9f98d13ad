// Package storefront composes the auth and cart stores of one client
// instance and keeps them reconciled: whenever the session changes, the
// buyer identity of the cart follows.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/auth"
	"github.com/openkcm/storefront-sync/internal/cart"
	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/pagination"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage"
)

// Commerce is the remote Commerce API as used by a client instance.
type Commerce interface {
	cart.Remote
	auth.Remote

	Customer(ctx context.Context, accessToken string) (commerce.Customer, error)
	CustomerOrders(ctx context.Context, accessToken string, page commerce.PageVariables) (commerce.Connection[commerce.Order], error)
	CustomerAddresses(ctx context.Context, accessToken string, page commerce.PageVariables) (commerce.Connection[commerce.MailingAddress], error)
	CreateCheckout(ctx context.Context, in commerce.CheckoutInput) (commerce.Checkout, error)
	CollectionProducts(ctx context.Context, v commerce.CatalogVariables) (commerce.Collection, error)
}

type Options struct {
	PageSize        int
	CatalogPageSize int
	Language        commerce.LanguageCode
	Recorder        *Recorder
	// ForgetOnClose drops the persisted keys of a client when it is torn
	// down. It is meant for storage that lives no longer than the process.
	ForgetOnClose bool
}

// ErrClosed is returned by Start once the client has been torn down.
var ErrClosed = errors.New("client closed")

// Client is the context object of one client instance. It is created by
// New, started once with Start and torn down with Close.
type Client struct {
	id            string
	remote        Commerce
	storage       storage.Storage
	recorder      *Recorder
	forgetOnClose bool

	auth *auth.Store
	cart *cart.Store

	startMu sync.Mutex
	started bool

	mu              sync.Mutex
	orders          pagination.State
	addresses       pagination.State
	catalog         pagination.Catalog
	catalogPageSize int
	closed          bool
}

func New(id string, remote Commerce, st storage.Storage, opts Options) *Client {
	return &Client{
		id:              id,
		remote:          remote,
		storage:         st,
		recorder:        opts.Recorder,
		forgetOnClose:   opts.ForgetOnClose,
		auth:            auth.NewStore(remote, st),
		cart:            cart.NewStore(remote, st, opts.Language),
		orders:          pagination.New(opts.PageSize),
		addresses:       pagination.New(opts.PageSize),
		catalogPageSize: opts.CatalogPageSize,
	}
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Auth() *auth.Store {
	return c.auth
}

func (c *Client) Cart() *cart.Store {
	return c.cart
}

// Start initializes the auth store, loads the cart and reconciles the buyer
// identity with the restored session. Once that has succeeded further calls
// return immediately; until then every call retries the cart load and the
// reconciliation, so a client that started during an outage catches up.
func (c *Client) Start(ctx context.Context) error {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	if c.Closed() {
		return ErrClosed
	}
	if c.started {
		return nil
	}

	ctx = slogctx.With(ctx, "client", c.id)

	c.auth.Initialize(ctx)

	if _, err := c.cart.Refresh(ctx); err != nil {
		slogctx.Error(ctx, "Failed to load cart", "error", err)
		return fmt.Errorf("loading cart: %w", err)
	}

	if err := c.reconcile(ctx); err != nil {
		return fmt.Errorf("reconciling cart: %w", err)
	}

	c.started = true
	slogctx.Debug(ctx, "Client started")

	return nil
}

// Close tears the client down. It reports whether this call closed it; later
// calls are no-ops. It is called by the Registry on eviction.
func (c *Client) Close(ctx context.Context) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	c.closed = true
	c.mu.Unlock()

	if c.forgetOnClose {
		for _, key := range []string{storage.KeyAccessToken, storage.KeyCartID} {
			if err := c.storage.Delete(ctx, key); err != nil {
				slogctx.Error(ctx, "Failed to drop client key", "client", c.id, "key", key, "error", err)
			}
		}
	}

	slogctx.Debug(ctx, "Client torn down", "client", c.id)

	return true
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Login authenticates and attaches the customer to the cart.
func (c *Client) Login(ctx context.Context, creds auth.Credentials) (auth.Session, error) {
	session, err := c.auth.Login(ctx, creds)
	c.recorder.operation(ctx, "auth", "login", err)
	if err != nil {
		return auth.Session{}, err
	}

	if err := c.reconcile(ctx); err != nil {
		slogctx.Warn(ctx, "Failed to attach customer to cart after login", "error", err)
	}

	return session, nil
}

func (c *Client) Signup(ctx context.Context, in commerce.SignupInput) (string, error) {
	id, err := c.auth.Signup(ctx, in)
	c.recorder.operation(ctx, "auth", "signup", err)
	return id, err
}

// Logout ends the session and detaches the customer from the cart.
func (c *Client) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	c.recorder.operation(ctx, "auth", "logout", err)
	if err != nil {
		return err
	}

	if err := c.reconcile(ctx); err != nil {
		slogctx.Warn(ctx, "Failed to detach customer from cart after logout", "error", err)
	}

	return nil
}

// reconcile attaches the session to the cart, or detaches it when there is
// none, then refreshes the cart.
func (c *Client) reconcile(ctx context.Context) error {
	var err error
	if session, ok := c.auth.Session(); ok {
		_, err = c.cart.AttachUser(ctx, session.Token)
		c.recorder.operation(ctx, "cart", "attachUser", err)
	} else {
		_, err = c.cart.DetachUser(ctx)
		c.recorder.operation(ctx, "cart", "detachUser", err)
	}

	_, refreshErr := c.cart.Refresh(ctx)
	c.recorder.operation(ctx, "cart", "refresh", refreshErr)

	return errors.Join(err, refreshErr)
}

// SetLocale switches the language carts and catalogs are fetched in.
func (c *Client) SetLocale(ctx context.Context, locale string) (commerce.Cart, error) {
	lang := commerce.LanguageFromLocale(ctx, locale)

	c.mu.Lock()
	c.catalog = c.catalog.WithLanguage(lang)
	c.mu.Unlock()

	cart, err := c.cart.SetLanguage(ctx, lang)
	c.recorder.operation(ctx, "cart", "setLanguage", err)
	return cart, err
}

func (c *Client) Refresh(ctx context.Context) (commerce.Cart, error) {
	snapshot, err := c.cart.Refresh(ctx)
	c.recorder.operation(ctx, "cart", "refresh", err)
	return snapshot, err
}

func (c *Client) AddToCart(ctx context.Context, m cart.Merchandise) cart.Result {
	res := c.cart.Add(ctx, m)
	c.recorder.operation(ctx, "cart", "add", res.Err())
	return res
}

func (c *Client) EditLine(ctx context.Context, lineID string, quantity int) cart.Result {
	res := c.cart.Edit(ctx, lineID, quantity)
	c.recorder.operation(ctx, "cart", "edit", res.Err())
	return res
}

func (c *Client) DeleteLine(ctx context.Context, lineID string) cart.Result {
	res := c.cart.Delete(ctx, lineID)
	c.recorder.operation(ctx, "cart", "delete", res.Err())
	return res
}

func (c *Client) WipeCart(ctx context.Context) cart.Result {
	res := c.cart.Wipe(ctx)
	c.recorder.operation(ctx, "cart", "wipe", res.Err())
	return res
}

// Orders moves the orders list by action and returns the resulting page.
func (c *Client) Orders(ctx context.Context, action pagination.Action, cursor string) (commerce.Connection[commerce.Order], error) {
	session, ok := c.auth.Session()
	if !ok {
		return commerce.Connection[commerce.Order]{}, serviceerr.ErrNotLoggedIn
	}

	c.mu.Lock()
	next, err := c.orders.Step(action, cursor)
	if err == nil {
		c.orders = next
	}
	c.mu.Unlock()
	if err != nil {
		return commerce.Connection[commerce.Order]{}, err
	}

	orders, err := c.remote.CustomerOrders(ctx, session.Token, next.PageVariables)
	c.recorder.operation(ctx, "customer", "orders", err)
	return orders, err
}

// Addresses moves the addresses list by action and returns the resulting
// page.
func (c *Client) Addresses(ctx context.Context, action pagination.Action, cursor string) (commerce.Connection[commerce.MailingAddress], error) {
	session, ok := c.auth.Session()
	if !ok {
		return commerce.Connection[commerce.MailingAddress]{}, serviceerr.ErrNotLoggedIn
	}

	c.mu.Lock()
	next, err := c.addresses.Step(action, cursor)
	if err == nil {
		c.addresses = next
	}
	c.mu.Unlock()
	if err != nil {
		return commerce.Connection[commerce.MailingAddress]{}, err
	}

	addresses, err := c.remote.CustomerAddresses(ctx, session.Token, next.PageVariables)
	c.recorder.operation(ctx, "customer", "addresses", err)
	return addresses, err
}

// Customer returns the logged-in customer.
func (c *Client) Customer(ctx context.Context) (commerce.Customer, error) {
	session, ok := c.auth.Session()
	if !ok {
		return commerce.Customer{}, serviceerr.ErrNotLoggedIn
	}

	customer, err := c.remote.Customer(ctx, session.Token)
	c.recorder.operation(ctx, "customer", "get", err)
	return customer, err
}
