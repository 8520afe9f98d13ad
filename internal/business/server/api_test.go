package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/commerce/commercemock"
	"github.com/openkcm/storefront-sync/internal/config"
	"github.com/openkcm/storefront-sync/internal/content"
	"github.com/openkcm/storefront-sync/internal/search"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage/storagememory"
	"github.com/openkcm/storefront-sync/internal/storefront"
)

const (
	email    = "jane@example.com"
	password = "secret"
)

type fakePages struct {
	slug, locale string
}

func (f *fakePages) Load(_ context.Context, slug, locale string) (content.PageData, error) {
	if slug == "missing" {
		return content.PageData{}, serviceerr.ErrNotFound
	}
	f.slug, f.locale = slug, locale
	return content.PageData{Content: content.Page{Title: "Home", Slug: slug}}, nil
}

type fakeSearch struct {
	text string
	page int
}

func (f *fakeSearch) Search(_ context.Context, text string, page int) (search.Result, error) {
	f.text, f.page = text, page
	return search.Result{Query: text, Page: page, Hits: []search.Hit{{Title: "Shirt"}}}, nil
}

func newTestDependencies(t *testing.T, remote *commercemock.Commerce) Dependencies {
	t.Helper()

	if remote == nil {
		remote = commercemock.New()
	}

	registry := storefront.NewRegistry(t.Context(), remote, storagememory.New(), time.Hour, storefront.Options{PageSize: 2})
	t.Cleanup(registry.Close)

	return Dependencies{
		Registry: registry,
		Pages:    &fakePages{},
		Search:   &fakeSearch{},
	}
}

type apiClient struct {
	t      *testing.T
	server *httptest.Server
	http   *http.Client
}

func newAPIClient(t *testing.T, deps Dependencies) *apiClient {
	t.Helper()

	cfg := testConfig()
	cfg.HTTP.ClientCookie = config.CookieTemplate{Name: "storefront_client", Path: "/"}
	require.NoError(t, initMeters(t.Context(), cfg))

	srv := httptest.NewServer(createHTTPServer(t.Context(), cfg, deps).Handler)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &apiClient{t: t, server: srv, http: &http.Client{Jar: jar}}
}

func (c *apiClient) do(method, path string, body any, out any) int {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(c.t.Context(), method, c.server.URL+path, reader)
	require.NoError(c.t, err)

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp.StatusCode
}

func TestAPI_CartFlow(t *testing.T) {
	remote := commercemock.New(commercemock.WithStock("gid://shopify/ProductVariant/1", 2))
	c := newAPIClient(t, newTestDependencies(t, remote))

	var cart CartModel
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/cart", nil, &cart))
	assert.NotEmpty(t, cart.ID)
	assert.Empty(t, cart.Lines.Nodes)

	available := 2
	add := AddLineRequest{MerchandiseID: "gid://shopify/ProductVariant/1", QuantityAvailable: &available}
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/v1/cart/lines", add, &cart))
	require.Len(t, cart.Lines.Nodes, 1)
	assert.NotEmpty(t, cart.FormattedTotal)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/v1/cart/lines", add, &cart))
	assert.Equal(t, 2, cart.Lines.Nodes[0].Quantity)

	var rejected ErrorModel
	assert.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/v1/cart/lines", add, &rejected))
	assert.Equal(t, string(serviceerr.CodeLimitExceeded), rejected.Error)
	require.NotNil(t, rejected.Cart)
	assert.Equal(t, 2, rejected.Cart.Lines.Nodes[0].Quantity)

	lineID := cart.Lines.Nodes[0].ID
	assert.Equal(t, http.StatusBadRequest,
		c.do(http.MethodPatch, "/v1/cart/lines/"+lineID, EditLineRequest{Quantity: 0}, &rejected))
	assert.Equal(t, string(serviceerr.CodeInvalidQuantity), rejected.Error)

	require.Equal(t, http.StatusOK, c.do(http.MethodPatch, "/v1/cart/lines/"+lineID, EditLineRequest{Quantity: 1}, &cart))
	assert.Equal(t, 1, cart.Lines.Nodes[0].Quantity)

	var checkout CheckoutResponse
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/v1/checkout", nil, &checkout))
	assert.NotEmpty(t, checkout.WebURL)

	var wiped CartModel
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/cart", nil, &wiped))
	assert.NotEqual(t, cart.ID, wiped.ID)
	assert.Empty(t, wiped.Lines.Nodes)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/v1/checkout", nil, &rejected))
	assert.Equal(t, string(serviceerr.CodeEmptyCart), rejected.Error)
}

func TestAPI_AddLineRequiresAvailableQuantity(t *testing.T) {
	remote := commercemock.New(commercemock.WithStock("gid://shopify/ProductVariant/1", 2))
	c := newAPIClient(t, newTestDependencies(t, remote))

	var rejected ErrorModel
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/v1/cart/lines",
		map[string]any{"merchandiseId": "gid://shopify/ProductVariant/1"}, &rejected))
	assert.Equal(t, string(serviceerr.CodeInvalidRequest), rejected.Error)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/v1/cart/lines",
		map[string]any{"merchandiseId": "gid://shopify/ProductVariant/1", "quantityAvailable": -1}, &rejected))
	assert.Equal(t, string(serviceerr.CodeInvalidRequest), rejected.Error)

	assert.Zero(t, remote.Mutations())
}

func TestAPI_DeleteUnknownLine(t *testing.T) {
	c := newAPIClient(t, newTestDependencies(t, nil))

	var rejected ErrorModel
	assert.Equal(t, http.StatusNotFound, c.do(http.MethodDelete, "/v1/cart/lines/unknown", nil, &rejected))
	assert.Equal(t, string(serviceerr.CodeNotFound), rejected.Error)
}

func TestAPI_Auth(t *testing.T) {
	remote := commercemock.New(
		commercemock.WithCustomer(email, password),
		commercemock.WithOrders(3),
	)
	c := newAPIClient(t, newTestDependencies(t, remote))

	var session SessionModel
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/session", nil, &session))
	assert.True(t, session.Initialized)
	assert.False(t, session.LoggedIn)

	var errModel ErrorModel
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/v1/auth/logout", nil, &errModel))
	assert.Equal(t, string(serviceerr.CodeNotLoggedIn), errModel.Error)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/v1/customer/orders", nil, &errModel))

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": email}, &errModel))

	assert.Equal(t, http.StatusUnprocessableEntity,
		c.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": email, "password": "wrong"}, &errModel))
	assert.Equal(t, string(serviceerr.CodeUserError), errModel.Error)
	assert.Equal(t, "Incorrect email or password.", errModel.ErrorDescription)

	require.Equal(t, http.StatusOK,
		c.do(http.MethodPost, "/v1/auth/login", map[string]string{"email": email, "password": password}, &session))
	assert.True(t, session.LoggedIn)
	assert.NotNil(t, session.ExpiresAt)

	var cart CartModel
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/cart", nil, &cart))
	require.NotNil(t, cart.BuyerIdentity.Customer)

	var orders commerce.Connection[commerce.Order]
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/customer/orders?action=reset", nil, &orders))
	assert.Len(t, orders.Nodes, 2)
	require.Equal(t, http.StatusOK,
		c.do(http.MethodGet, "/v1/customer/orders?action=next&cursor="+*orders.PageInfo.EndCursor, nil, &orders))
	assert.Len(t, orders.Nodes, 1)

	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/v1/customer/orders?action=sideways", nil, &errModel))

	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/v1/auth/logout", nil, &session))
	assert.False(t, session.LoggedIn)
}

func TestAPI_Signup(t *testing.T) {
	remote := commercemock.New(commercemock.WithCustomer(email, password))
	c := newAPIClient(t, newTestDependencies(t, remote))

	var created SignupResponse
	in := commerce.SignupInput{Email: "new@example.com", Password: "pw"}
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/v1/auth/signup", in, &created))
	assert.NotEmpty(t, created.CustomerID)

	var errModel ErrorModel
	in.Email = email
	assert.Equal(t, http.StatusUnprocessableEntity, c.do(http.MethodPost, "/v1/auth/signup", in, &errModel))
	assert.Equal(t, "This value is already taken.", errModel.ErrorDescription)
}

func TestAPI_Catalog(t *testing.T) {
	c := newAPIClient(t, newTestDependencies(t, nil))

	var col commerce.Collection
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/collections/shirts/products", nil, &col))
	assert.Equal(t, "shirts", col.Handle)
	assert.NotEmpty(t, col.Products.Nodes)

	q := url.Values{"action": {"filter"}, "filter": {`{"available":true}`}, "minPrice": {"5"}}
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/collections/shirts/products?"+q.Encode(), nil, &col))

	var errModel ErrorModel
	q = url.Values{"action": {"filter"}, "filter": {`{"colour":"red"}`}}
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/v1/collections/shirts/products?"+q.Encode(), nil, &errModel))
	assert.Equal(t, string(serviceerr.CodeInvalidRequest), errModel.Error)
	assert.Equal(t, http.StatusBadRequest,
		c.do(http.MethodGet, "/v1/collections/shirts/products?minPrice=cheap", nil, &errModel))

	first := 3
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/v1/collections/shirts/products",
		commerce.CatalogVariables{PageVariables: commerce.PageVariables{First: &first}}, &col))
	assert.Len(t, col.Products.Nodes, 3)
}

func TestAPI_SearchAndPages(t *testing.T) {
	deps := newTestDependencies(t, nil)
	c := newAPIClient(t, deps)

	var res search.Result
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/search?q=shirt&page=2", nil, &res))
	assert.Equal(t, "shirt", deps.Search.(*fakeSearch).text)
	assert.Equal(t, 2, deps.Search.(*fakeSearch).page)

	var errModel ErrorModel
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/v1/search", nil, &errModel))
	assert.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/v1/search?q=shirt&page=-1", nil, &errModel))

	var page content.PageData
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/pages/home?locale=es", nil, &page))
	assert.Equal(t, "es", deps.Pages.(*fakePages).locale)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/pages/home", nil, &page))
	assert.Equal(t, "en", deps.Pages.(*fakePages).locale)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/v1/pages/missing", nil, &errModel))
}

func TestAPI_SetLocale(t *testing.T) {
	deps := newTestDependencies(t, nil)
	c := newAPIClient(t, deps)

	var cart CartModel
	require.Equal(t, http.StatusOK, c.do(http.MethodPut, "/v1/locale", LocaleRequest{Locale: "es-ES"}, &cart))

	var page content.PageData
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/v1/pages/home", nil, &page))
	assert.Equal(t, "es", deps.Pages.(*fakePages).locale)
}

func TestToErrorModel(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{name: "service error", err: serviceerr.ErrCartFull, wantCode: "cart_full", wantStatus: http.StatusUnprocessableEntity},
		{name: "user errors", err: commerce.UserErrors{{Code: commerce.CodeTaken}}, wantCode: "user_error", wantStatus: http.StatusUnprocessableEntity},
		{name: "unexpected", err: serviceerr.ErrUnexpected, wantCode: "unexpected", wantStatus: http.StatusBadGateway},
		{name: "plain error", err: io.EOF, wantCode: "unknown", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model, status := toErrorModel(tt.err)
			assert.Equal(t, tt.wantCode, model.Error)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
