package server

import (
	"context"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/pagination"
	"github.com/openkcm/storefront-sync/internal/storefront"
)

// PageParams are the query parameters of a paginated list.
type PageParams struct {
	Action *string
	Cursor *string
}

// CatalogParams are the query parameters of a collection listing.
type CatalogParams struct {
	PageParams

	Filter   []string
	MinPrice *float64
	MaxPrice *float64
	SortKey  *string
	Reverse  *bool
}

func bindPageParams(r *http.Request) (pagination.Action, string, error) {
	var params PageParams

	if err := runtime.BindQueryParameter("form", true, false, "action", r.URL.Query(), &params.Action); err != nil {
		return "", "", newBadRequest("invalid format for parameter action: %s", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "cursor", r.URL.Query(), &params.Cursor); err != nil {
		return "", "", newBadRequest("invalid format for parameter cursor: %s", err)
	}

	action, err := pagination.ParseAction(deref(params.Action))
	if err != nil {
		return "", "", err
	}

	return action, deref(params.Cursor), nil
}

func bindCatalogParams(r *http.Request) (storefront.CatalogRequest, error) {
	var params CatalogParams

	action, cursor, err := bindPageParams(r)
	if err != nil {
		return storefront.CatalogRequest{}, err
	}

	query := r.URL.Query()
	bindings := []struct {
		name string
		dest any
	}{
		{"filter", &params.Filter},
		{"minPrice", &params.MinPrice},
		{"maxPrice", &params.MaxPrice},
		{"sortKey", &params.SortKey},
		{"reverse", &params.Reverse},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return storefront.CatalogRequest{}, newBadRequest("invalid format for parameter %s: %s", b.name, err)
		}
	}

	req := storefront.CatalogRequest{
		Action:  action,
		Cursor:  cursor,
		Filters: params.Filter,
		SortKey: deref(params.SortKey),
		Reverse: deref(params.Reverse),
	}
	if params.MinPrice != nil || params.MaxPrice != nil {
		req.PriceRange = &commerce.PriceRange{Min: params.MinPrice, Max: params.MaxPrice}
	}

	return req, nil
}

func deref[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

func (s *apiServer) getCustomer(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return c.Customer(ctx)
}

func (s *apiServer) listOrders(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	action, cursor, err := bindPageParams(r)
	if err != nil {
		return nil, err
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return c.Orders(ctx, action, cursor)
}

func (s *apiServer) listAddresses(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	action, cursor, err := bindPageParams(r)
	if err != nil {
		return nil, err
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return c.Addresses(ctx, action, cursor)
}

func (s *apiServer) listCollectionProducts(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	req, err := bindCatalogParams(r)
	if err != nil {
		return nil, err
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return c.Catalog(ctx, r.PathValue("handle"), req)
}

// overrideCollectionProducts replaces the whole catalog state with the
// variables in the request body.
func (s *apiServer) overrideCollectionProducts(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	var vars commerce.CatalogVariables
	if err := decodeBody(r, &vars); err != nil {
		return nil, err
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return c.Catalog(ctx, r.PathValue("handle"), storefront.CatalogRequest{
		Action:   pagination.ActionOverride,
		Override: &vars,
	})
}
