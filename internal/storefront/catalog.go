package storefront

import (
	"context"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/pagination"
)

// CatalogRequest is one transition of the catalog listing of a collection.
type CatalogRequest struct {
	Action     pagination.Action
	Cursor     string
	Filters    []string
	PriceRange *commerce.PriceRange
	SortKey    string
	Reverse    bool
	Override   *commerce.CatalogVariables
}

// Catalog applies req to the catalog state of handle and returns the
// resulting page. Switching to another collection starts from its first
// page.
func (c *Client) Catalog(ctx context.Context, handle string, req CatalogRequest) (commerce.Collection, error) {
	c.mu.Lock()
	state := c.catalog
	if state.Handle != handle || state.PageSize == 0 {
		state = pagination.NewCatalog(handle, c.catalogPageSize, c.cart.Language())
	}
	state = state.WithLanguage(c.cart.Language())

	next, err := applyCatalog(state, req)
	if err == nil {
		c.catalog = next
	}
	c.mu.Unlock()
	if err != nil {
		return commerce.Collection{}, err
	}

	col, err := c.remote.CollectionProducts(ctx, next.Variables())
	c.recorder.operation(ctx, "catalog", string(req.Action), err)
	return col, err
}

func applyCatalog(state pagination.Catalog, req CatalogRequest) (pagination.Catalog, error) {
	switch req.Action {
	case pagination.ActionFilter:
		return state.ChangeFilter(req.Filters, req.PriceRange)
	case pagination.ActionSortKey:
		return state.ChangeSortKey(req.SortKey, req.Reverse)
	case pagination.ActionOverride:
		if req.Override == nil {
			return state.Reset(), nil
		}
		over := *req.Override
		over.Handle = state.Handle
		return state.Override(over)
	default:
		return state.Step(req.Action, req.Cursor)
	}
}
