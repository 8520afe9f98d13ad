package pagination

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/go-viper/mapstructure/v2"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

var sortKeys = []string{
	"BEST_SELLING", "COLLECTION_DEFAULT", "CREATED", "ID", "MANUAL", "PRICE", "RELEVANCE", "TITLE",
}

// Catalog is the pagination state of a collection listing together with its
// filter and sort criteria.
type Catalog struct {
	State

	Handle   string
	Filters  []commerce.ProductFilter
	SortKey  string
	Reverse  bool
	Language commerce.LanguageCode
}

func NewCatalog(handle string, pageSize int, lang commerce.LanguageCode) Catalog {
	return Catalog{State: New(pageSize), Handle: handle, Language: lang}
}

// Reset returns to the initial state of the collection: first page, no
// filters and the default sort order.
func (c Catalog) Reset() Catalog {
	return NewCatalog(c.Handle, c.PageSize, c.Language)
}

// firstPage returns to the first page, keeping the filter and sort criteria.
func (c Catalog) firstPage() Catalog {
	c.State = c.State.Reset()
	return c
}

func (c Catalog) Next(cursor string) Catalog {
	c.State = c.State.Next(cursor)
	return c
}

func (c Catalog) Prev(cursor string) Catalog {
	c.State = c.State.Prev(cursor)
	return c
}

// WithLanguage returns the state for another language, keeping the page.
func (c Catalog) WithLanguage(lang commerce.LanguageCode) Catalog {
	c.Language = lang
	return c
}

// ChangeFilter replaces the filters and returns to the first page. Each raw
// filter is a JSON object in the remote filter shape; priceRange, when set,
// is added as a price filter.
func (c Catalog) ChangeFilter(raw []string, priceRange *commerce.PriceRange) (Catalog, error) {
	filters := make([]commerce.ProductFilter, 0, len(raw)+1)
	for _, r := range raw {
		f, err := DecodeFilter(r)
		if err != nil {
			return c, err
		}
		filters = append(filters, f)
	}

	if priceRange != nil && (priceRange.Min != nil || priceRange.Max != nil) {
		filters = append(filters, commerce.ProductFilter{Price: priceRange})
	}

	c.Filters = filters
	return c.firstPage(), nil
}

// ChangeSortKey sets the sort criteria and returns to the first page.
func (c Catalog) ChangeSortKey(sortKey string, reverse bool) (Catalog, error) {
	if sortKey != "" && !slices.Contains(sortKeys, sortKey) {
		return c, fmt.Errorf("unknown sort key %q: %w", sortKey, serviceerr.ErrInvalidRequest)
	}

	c.SortKey = sortKey
	c.Reverse = reverse
	return c.firstPage(), nil
}

// Override replaces the whole variable set. The page size is kept and fills
// in a missing first or last. Without page variables the override starts on
// the first page; mixing forward and backward variables is rejected.
func (c Catalog) Override(v commerce.CatalogVariables) (Catalog, error) {
	if v.SortKey != "" && !slices.Contains(sortKeys, v.SortKey) {
		return c, fmt.Errorf("unknown sort key %q: %w", v.SortKey, serviceerr.ErrInvalidRequest)
	}

	page, err := c.State.override(v.PageVariables)
	if err != nil {
		return c, err
	}

	return Catalog{
		State:    page,
		Handle:   v.Handle,
		Filters:  v.Filters,
		SortKey:  v.SortKey,
		Reverse:  v.Reverse,
		Language: c.Language,
	}, nil
}

// Variables returns the query variables of the current state.
func (c Catalog) Variables() commerce.CatalogVariables {
	return commerce.CatalogVariables{
		PageVariables: c.PageVariables,
		Handle:        c.Handle,
		Filters:       c.Filters,
		SortKey:       c.SortKey,
		Reverse:       c.Reverse,
		Language:      c.Language,
	}
}

// DecodeFilter parses one JSON filter object. Unknown keys are rejected.
func DecodeFilter(raw string) (commerce.ProductFilter, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return commerce.ProductFilter{}, fmt.Errorf("parsing filter %q: %w: %w", raw, serviceerr.ErrInvalidRequest, err)
	}

	var f commerce.ProductFilter
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return commerce.ProductFilter{}, fmt.Errorf("creating filter decoder: %w", err)
	}

	if err := dec.Decode(m); err != nil {
		return commerce.ProductFilter{}, fmt.Errorf("decoding filter %q: %w: %w", raw, serviceerr.ErrInvalidRequest, err)
	}

	return f, nil
}

// Step applies one of ActionNext, ActionPrev or ActionReset.
func (c Catalog) Step(action Action, cursor string) (Catalog, error) {
	if action == ActionReset || action == "" {
		return c.Reset(), nil
	}

	s, err := c.State.Step(action, cursor)
	if err != nil {
		return c, err
	}
	c.State = s
	return c, nil
}
