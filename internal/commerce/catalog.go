package commerce

import (
	"context"
	"fmt"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

type VariantOption struct {
	Name  string `json:"name" mapstructure:"name"`
	Value string `json:"value" mapstructure:"value"`
}

type MetafieldFilter struct {
	Namespace string `json:"namespace" mapstructure:"namespace"`
	Key       string `json:"key" mapstructure:"key"`
	Value     string `json:"value" mapstructure:"value"`
}

type PriceRange struct {
	Min *float64 `json:"min,omitempty" mapstructure:"min"`
	Max *float64 `json:"max,omitempty" mapstructure:"max"`
}

// ProductFilter is one entry of the collection products "filters" argument.
// Exactly one field is expected to be set.
type ProductFilter struct {
	Available        *bool            `json:"available,omitempty" mapstructure:"available"`
	Price            *PriceRange      `json:"price,omitempty" mapstructure:"price"`
	ProductType      string           `json:"productType,omitempty" mapstructure:"productType"`
	ProductVendor    string           `json:"productVendor,omitempty" mapstructure:"productVendor"`
	Tag              string           `json:"tag,omitempty" mapstructure:"tag"`
	VariantOption    *VariantOption   `json:"variantOption,omitempty" mapstructure:"variantOption"`
	ProductMetafield *MetafieldFilter `json:"productMetafield,omitempty" mapstructure:"productMetafield"`
}

// CatalogVariables are the variables of the collection products query.
type CatalogVariables struct {
	PageVariables

	Handle   string          `json:"handle"`
	Filters  []ProductFilter `json:"filters"`
	SortKey  string          `json:"sortKey,omitempty"`
	Reverse  bool            `json:"reverse"`
	Language LanguageCode    `json:"language"`
}

// CollectionProducts returns a collection and a page of its products.
func (c *Client) CollectionProducts(ctx context.Context, v CatalogVariables) (Collection, error) {
	var resp struct {
		Collection *Collection `json:"collection"`
	}

	vars := v.apply(map[string]any{
		"handle":   v.Handle,
		"filters":  v.Filters,
		"reverse":  v.Reverse,
		"language": v.Language,
	})
	if v.SortKey != "" {
		vars["sortKey"] = v.SortKey
	}

	if err := c.do(ctx, "CollectionProducts", collectionProductsQuery, vars, &resp, nil); err != nil {
		return Collection{}, err
	}

	if resp.Collection == nil {
		return Collection{}, fmt.Errorf("CollectionProducts %q: %w", v.Handle, serviceerr.ErrNotFound)
	}

	return *resp.Collection, nil
}

// Product returns a product by id.
func (c *Client) Product(ctx context.Context, id string, lang LanguageCode) (Product, error) {
	var resp struct {
		Product *Product `json:"product"`
	}

	vars := map[string]any{"id": id, "language": lang}
	if err := c.do(ctx, "Product", productQuery, vars, &resp, nil); err != nil {
		return Product{}, err
	}

	if resp.Product == nil {
		return Product{}, fmt.Errorf("Product %q: %w", id, serviceerr.ErrNotFound)
	}

	return *resp.Product, nil
}

// Collection returns a collection by id together with its first products.
func (c *Client) Collection(ctx context.Context, id string, lang LanguageCode) (Collection, error) {
	var resp struct {
		Collection *Collection `json:"collection"`
	}

	vars := map[string]any{"id": id, "language": lang}
	if err := c.do(ctx, "Collection", collectionQuery, vars, &resp, nil); err != nil {
		return Collection{}, err
	}

	if resp.Collection == nil {
		return Collection{}, fmt.Errorf("Collection %q: %w", id, serviceerr.ErrNotFound)
	}

	return *resp.Collection, nil
}
