package content

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/openkcm/storefront-sync/internal/commerce"
)

const resolveConcurrency = 4

// Catalog resolves the commerce references of a page.
type Catalog interface {
	Product(ctx context.Context, id string, lang commerce.LanguageCode) (commerce.Product, error)
	Collection(ctx context.Context, id string, lang commerce.LanguageCode) (commerce.Collection, error)
}

// PageData is a page with every referenced product and collection resolved
// and keyed by its id.
type PageData struct {
	Content     Page                           `json:"content"`
	Products    map[string]commerce.Product    `json:"products"`
	Collections map[string]commerce.Collection `json:"collections"`
}

type PageLoader struct {
	content *Client
	catalog Catalog
}

func NewPageLoader(content *Client, catalog Catalog) *PageLoader {
	return &PageLoader{content: content, catalog: catalog}
}

// Load fetches the page and resolves its references in the language derived
// from locale. The first failing lookup fails the whole load.
func (l *PageLoader) Load(ctx context.Context, slug, locale string) (PageData, error) {
	page, err := l.content.Page(ctx, slug, locale)
	if err != nil {
		return PageData{}, err
	}

	return Resolve(ctx, l.catalog, page, commerce.LanguageFromLocale(ctx, locale))
}

// Resolve looks up the products and collections page refers to.
func Resolve(ctx context.Context, catalog Catalog, page Page, lang commerce.LanguageCode) (PageData, error) {
	data := PageData{
		Content:     page,
		Products:    make(map[string]commerce.Product),
		Collections: make(map[string]commerce.Collection),
	}

	var mu sync.Mutex
	seen := make(map[string]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	for _, s := range page.Sections {
		switch s.Typename {
		case TypeCollectionShowcase:
			id := s.ShopifyCollection
			if id == "" || seen["c:"+id] {
				continue
			}
			seen["c:"+id] = true

			g.Go(func() error {
				col, err := catalog.Collection(gctx, id, lang)
				if err != nil {
					return fmt.Errorf("resolving collection %q: %w", id, err)
				}
				mu.Lock()
				data.Collections[id] = col
				mu.Unlock()
				return nil
			})
		case TypeProductShowcase, TypeDetailedProductShowcase:
			id := s.Product
			if id == "" || seen["p:"+id] {
				continue
			}
			seen["p:"+id] = true

			g.Go(func() error {
				p, err := catalog.Product(gctx, id, lang)
				if err != nil {
					return fmt.Errorf("resolving product %q: %w", id, err)
				}
				mu.Lock()
				data.Products[id] = p
				mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return PageData{}, err
	}

	return data, nil
}
