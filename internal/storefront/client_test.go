package storefront_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/storefront-sync/internal/auth"
	"github.com/openkcm/storefront-sync/internal/cart"
	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/commerce/commercemock"
	"github.com/openkcm/storefront-sync/internal/pagination"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage"
	"github.com/openkcm/storefront-sync/internal/storage/storagememory"
	"github.com/openkcm/storefront-sync/internal/storefront"
)

const (
	email    = "jane@example.com"
	password = "secret"
)

func newClient(t *testing.T, remote *commercemock.Commerce) (*storefront.Client, *storagememory.Storage) {
	t.Helper()

	st := storagememory.New()
	c := storefront.New("client-1", remote, st, storefront.Options{PageSize: 2, CatalogPageSize: 5})
	require.NoError(t, c.Start(t.Context()))

	return c, st
}

func TestClient_Start(t *testing.T) {
	remote := commercemock.New()
	c, st := newClient(t, remote)

	assert.True(t, c.Auth().Initialized())
	snapshot, ok := c.Cart().Snapshot()
	require.True(t, ok)
	assert.Empty(t, snapshot.Lines.Nodes)
	assert.Equal(t, 1, remote.Calls("DetachBuyer"))

	id, err := st.Get(t.Context(), storage.KeyCartID)
	require.NoError(t, err)
	assert.Equal(t, snapshot.ID, id)

	require.NoError(t, c.Start(t.Context()))
	assert.Equal(t, 1, remote.Calls("CreateCart"), "start runs once")
}

func TestClient_StartRecoversAfterFailedCartLoad(t *testing.T) {
	outage := errors.New("commerce unavailable")
	remote := commercemock.New(
		commercemock.WithCustomer(email, password),
		commercemock.WithToken(email, "tok"),
	)
	remote.SetError("CreateCart", outage)

	st := storagememory.New()
	require.NoError(t, st.Set(t.Context(), storage.KeyAccessToken, `{"accessToken":"tok","expiresAt":"2030-01-01T00:00:00Z"}`))

	c := storefront.New("client-1", remote, st, storefront.Options{})

	err := c.Start(t.Context())
	require.ErrorIs(t, err, outage)
	_, loggedIn := c.Auth().Session()
	assert.True(t, loggedIn, "session is restored even when the cart is not")
	assert.Zero(t, remote.Calls("AttachBuyer"))

	remote.SetError("CreateCart", nil)

	require.NoError(t, c.Start(t.Context()))
	assert.Equal(t, 1, remote.Calls("AttachBuyer"), "restored session is attached once the cart loads")
	snapshot, ok := c.Cart().Snapshot()
	require.True(t, ok)
	require.NotNil(t, snapshot.BuyerIdentity.Email)
	assert.Equal(t, email, *snapshot.BuyerIdentity.Email)

	require.NoError(t, c.Start(t.Context()))
	assert.Equal(t, 1, remote.Calls("AttachBuyer"), "a completed start is not repeated")
	assert.Equal(t, 1, remote.Calls("CustomerAccessTokenRenew"), "the session is restored once")
}

func TestClient_LoginAttachesBuyer(t *testing.T) {
	remote := commercemock.New(commercemock.WithCustomer(email, password))
	c, _ := newClient(t, remote)

	session, err := c.Login(t.Context(), auth.Credentials{Email: email, Password: password})
	require.NoError(t, err)

	snapshot, ok := c.Cart().Snapshot()
	require.True(t, ok)
	require.NotNil(t, snapshot.BuyerIdentity.Customer)
	assert.Equal(t, 1, remote.Calls("AttachBuyer"))
	assert.True(t, remote.TTokenValid(session.Token))

	require.NoError(t, c.Logout(t.Context()))
	snapshot, _ = c.Cart().Snapshot()
	assert.Nil(t, snapshot.BuyerIdentity.Customer)
	assert.False(t, remote.TTokenValid(session.Token))
}

func TestClient_LoginRejected(t *testing.T) {
	remote := commercemock.New(commercemock.WithCustomer(email, password))
	c, _ := newClient(t, remote)

	_, err := c.Login(t.Context(), auth.Credentials{Email: email, Password: "wrong"})
	var userErrs commerce.UserErrors
	require.ErrorAs(t, err, &userErrs)
	assert.Equal(t, commerce.CodeUnidentifiedCustomer, userErrs.Code())
	assert.Equal(t, 0, remote.Calls("AttachBuyer"))
}

func TestClient_Checkout(t *testing.T) {
	addr := commerce.MailingAddress{ID: "gid://shopify/MailingAddress/1"}
	remote := commercemock.New(
		commercemock.WithCustomer(email, password),
		commercemock.WithDefaultAddress(email, addr),
	)
	c, _ := newClient(t, remote)

	_, err := c.Checkout(t.Context())
	require.ErrorIs(t, err, serviceerr.ErrEmptyCart)
	assert.Equal(t, 0, remote.Calls("CheckoutCreate"))

	res := c.AddToCart(t.Context(), cart.Merchandise{ID: "gid://shopify/ProductVariant/1", QuantityAvailable: 5})
	require.NoError(t, res.Err())
	before := res.Cart.ID

	_, err = c.Login(t.Context(), auth.Credentials{Email: email, Password: password})
	require.NoError(t, err)

	url, err := c.Checkout(t.Context())
	require.NoError(t, err)
	assert.Contains(t, url, "https://shop.example/checkouts/")
	assert.Equal(t, 1, remote.Calls("Customer"))

	snapshot, ok := c.Cart().Snapshot()
	require.True(t, ok)
	assert.NotEqual(t, before, snapshot.ID, "checkout wipes the cart")
	assert.Empty(t, snapshot.Lines.Nodes)
}

func TestClient_CheckoutFailureKeepsCart(t *testing.T) {
	remote := commercemock.New(commercemock.WithError("CheckoutCreate", serviceerr.ErrUnexpected))
	c, _ := newClient(t, remote)

	res := c.AddToCart(t.Context(), cart.Merchandise{ID: "gid://shopify/ProductVariant/1", QuantityAvailable: 5})
	require.NoError(t, res.Err())

	_, err := c.Checkout(t.Context())
	require.ErrorIs(t, err, serviceerr.ErrUnexpected)

	snapshot, _ := c.Cart().Snapshot()
	assert.Equal(t, res.Cart.ID, snapshot.ID)
	assert.Len(t, snapshot.Lines.Nodes, 1)
}

func TestClient_Orders(t *testing.T) {
	remote := commercemock.New(
		commercemock.WithCustomer(email, password),
		commercemock.WithOrders(5),
	)
	c, _ := newClient(t, remote)

	_, err := c.Orders(t.Context(), pagination.ActionReset, "")
	require.ErrorIs(t, err, serviceerr.ErrNotLoggedIn)
	assert.Equal(t, 0, remote.Calls("CustomerOrders"))

	_, err = c.Login(t.Context(), auth.Credentials{Email: email, Password: password})
	require.NoError(t, err)

	first, err := c.Orders(t.Context(), pagination.ActionReset, "")
	require.NoError(t, err)
	require.Len(t, first.Nodes, 2)
	assert.True(t, first.PageInfo.HasNextPage)

	second, err := c.Orders(t.Context(), pagination.ActionNext, *first.PageInfo.EndCursor)
	require.NoError(t, err)
	require.Len(t, second.Nodes, 2)
	assert.NotEqual(t, first.Nodes[0].ID, second.Nodes[0].ID)

	back, err := c.Orders(t.Context(), pagination.ActionPrev, *second.PageInfo.StartCursor)
	require.NoError(t, err)
	assert.Equal(t, first.Nodes, back.Nodes)
}

func TestClient_Catalog(t *testing.T) {
	remote := commercemock.New()
	c, _ := newClient(t, remote)

	col, err := c.Catalog(t.Context(), "shirts", storefront.CatalogRequest{Action: pagination.ActionReset})
	require.NoError(t, err)
	assert.Equal(t, "shirts", col.Handle)
	assert.Len(t, col.Products.Nodes, 5)

	next, err := c.Catalog(t.Context(), "shirts", storefront.CatalogRequest{
		Action: pagination.ActionNext,
		Cursor: *col.Products.PageInfo.EndCursor,
	})
	require.NoError(t, err)
	assert.NotEqual(t, col.Products.Nodes[0].ID, next.Products.Nodes[0].ID)

	_, err = c.Catalog(t.Context(), "shirts", storefront.CatalogRequest{Action: pagination.ActionSortKey, SortKey: "NOPE"})
	require.ErrorIs(t, err, serviceerr.ErrInvalidRequest)

	other, err := c.Catalog(t.Context(), "pants", storefront.CatalogRequest{Action: pagination.ActionNext, Cursor: "3"})
	require.NoError(t, err)
	assert.Equal(t, "pants", other.Handle)
}

func TestClient_SetLocale(t *testing.T) {
	remote := commercemock.New()
	c, _ := newClient(t, remote)
	views := remote.Calls("ViewCart")

	_, err := c.SetLocale(t.Context(), "es-MX")
	require.NoError(t, err)
	assert.Equal(t, commerce.LanguageES, c.Cart().Language())
	assert.Equal(t, views+1, remote.Calls("ViewCart"))

	_, err = c.SetLocale(t.Context(), "es")
	require.NoError(t, err)
	assert.Equal(t, views+1, remote.Calls("ViewCart"), "unchanged language does not refresh")
}

func TestRegistry(t *testing.T) {
	remote := commercemock.New()
	st := storagememory.New()
	r := storefront.NewRegistry(t.Context(), remote, st, time.Hour, storefront.Options{})

	one, err := r.Get(t.Context(), "one")
	require.NoError(t, err)
	again, err := r.Get(t.Context(), "one")
	require.NoError(t, err)
	assert.Same(t, one, again)

	two, err := r.Get(t.Context(), "two")
	require.NoError(t, err)
	assert.NotSame(t, one, two)
	assert.Equal(t, 2, r.Len())

	_, err = st.Get(t.Context(), "one:"+storage.KeyCartID)
	require.NoError(t, err, "clients persist into their own namespace")

	r.Teardown("one")
	assert.True(t, one.Closed())
	assert.Equal(t, 1, r.Len())
	assert.ErrorIs(t, one.Start(t.Context()), storefront.ErrClosed)

	_, err = st.Get(t.Context(), "one:"+storage.KeyCartID)
	require.NoError(t, err, "durable keys outlive the client")

	revived, err := r.Get(t.Context(), "one")
	require.NoError(t, err)
	assert.NotSame(t, one, revived)
	assert.Equal(t, 1, remote.Calls("ValidateCart"), "a new client resumes the persisted cart")
	r.Teardown("one")

	r.Close()
	assert.True(t, two.Closed())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_ForgetOnClose(t *testing.T) {
	remote := commercemock.New()
	st := storagememory.New()
	r := storefront.NewRegistry(t.Context(), remote, st, time.Hour, storefront.Options{ForgetOnClose: true})

	one, err := r.Get(t.Context(), "one")
	require.NoError(t, err)
	_, err = st.Get(t.Context(), "one:"+storage.KeyCartID)
	require.NoError(t, err)

	r.Teardown("one")
	assert.True(t, one.Closed())
	_, err = st.Get(t.Context(), "one:"+storage.KeyCartID)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
	assert.Zero(t, st.Len())
}

func TestRegistry_ReplacesClosedClient(t *testing.T) {
	remote := commercemock.New()
	r := storefront.NewRegistry(t.Context(), remote, storagememory.New(), time.Hour, storefront.Options{})

	one, err := r.Get(t.Context(), "one")
	require.NoError(t, err)

	// Torn down while still registered, as when eviction races a request.
	assert.True(t, one.Close(t.Context()))
	assert.False(t, one.Close(t.Context()), "close is idempotent")

	again, err := r.Get(t.Context(), "one")
	require.NoError(t, err)
	assert.NotSame(t, one, again)
	assert.False(t, again.Closed())
	assert.Equal(t, 1, r.Len())
}
