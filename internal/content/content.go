// Package content is a client for the remote Content API and assembles page
// data by resolving the commerce references a page carries.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/graphql"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

const (
	TypeHero                    = "SectionHero"
	TypeRichText                = "SectionRichText"
	TypeProductShowcase         = "SectionProductShowcase"
	TypeDetailedProductShowcase = "SectionDetailedProductShowcase"
	TypeCollectionShowcase      = "SectionCollectionShowcase"
)

const pageQuery = `
query Page($slug: String!, $locale: String) {
  pageCollection(where: { slug: $slug }, locale: $locale, limit: 1) {
    items {
      title
      slug
      sectionsCollection(limit: 20) {
        items {
          __typename
          ... on SectionHero { title subtitle colorTheme image { url description } }
          ... on SectionRichText { title body { json } }
          ... on SectionProductShowcase { title product colorTheme }
          ... on SectionDetailedProductShowcase { title description product colorTheme }
          ... on SectionCollectionShowcase { title shopifyCollection colorTheme }
        }
      }
    }
  }
}`

// Section is one page section. Fields the storefront resolves are decoded;
// the full section is kept in Raw for rendering.
type Section struct {
	Typename          string
	Product           string
	ShopifyCollection string
	Raw               json.RawMessage
}

func (s *Section) UnmarshalJSON(b []byte) error {
	var head struct {
		Typename          string `json:"__typename"`
		Product           string `json:"product"`
		ShopifyCollection string `json:"shopifyCollection"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return err
	}

	s.Typename = head.Typename
	s.Product = head.Product
	s.ShopifyCollection = head.ShopifyCollection
	s.Raw = append(json.RawMessage(nil), b...)

	return nil
}

func (s Section) MarshalJSON() ([]byte, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(map[string]string{"__typename": s.Typename})
}

type Page struct {
	Title    string    `json:"title"`
	Slug     string    `json:"slug"`
	Sections []Section `json:"sections"`
}

type Client struct {
	gql *graphql.Client
}

func NewClient(gql *graphql.Client) *Client {
	return &Client{gql: gql}
}

// Page returns the page with the given slug in locale. Null sections are
// dropped.
func (c *Client) Page(ctx context.Context, slug, locale string) (Page, error) {
	var resp struct {
		PageCollection *struct {
			Items []*struct {
				Title              string `json:"title"`
				Slug               string `json:"slug"`
				SectionsCollection *struct {
					Items []*Section `json:"items"`
				} `json:"sectionsCollection"`
			} `json:"items"`
		} `json:"pageCollection"`
	}

	vars := map[string]any{"slug": slug, "locale": locale}
	if err := c.gql.Do(ctx, pageQuery, vars, &resp); err != nil {
		if errors.Is(err, context.Canceled) {
			return Page{}, err
		}
		slogctx.Error(ctx, "Content API request failed", "slug", slug, "error", err)
		return Page{}, fmt.Errorf("fetching page %q: %w: %w", slug, serviceerr.ErrUnexpected, err)
	}

	if resp.PageCollection == nil || len(resp.PageCollection.Items) == 0 ||
		resp.PageCollection.Items[0] == nil || resp.PageCollection.Items[0].SectionsCollection == nil {
		return Page{}, fmt.Errorf("page %q: %w", slug, serviceerr.ErrNotFound)
	}

	item := resp.PageCollection.Items[0]
	page := Page{Title: item.Title, Slug: item.Slug}
	for _, s := range item.SectionsCollection.Items {
		if s != nil {
			page.Sections = append(page.Sections, *s)
		}
	}

	return page, nil
}
