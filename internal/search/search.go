// Package search queries the hosted product search index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-querystring/query"
	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

const (
	DefaultIndex       = "shopify_products"
	DefaultHitsPerPage = 8

	appIDHeader  = "X-Algolia-Application-Id"
	apiKeyHeader = "X-Algolia-API-Key"
)

// Params are the search parameters sent with each query.
type Params struct {
	Query         string `url:"query"`
	TypoTolerance string `url:"typoTolerance,omitempty"`
	HitsPerPage   int    `url:"hitsPerPage"`
	Page          int    `url:"page"`
}

type Hit struct {
	ObjectID           string   `json:"objectID"`
	ID                 int64    `json:"id"`
	Title              string   `json:"title"`
	Handle             string   `json:"handle"`
	Vendor             string   `json:"vendor"`
	ProductType        string   `json:"product_type"`
	VariantTitle       string   `json:"variant_title"`
	Price              float64  `json:"price"`
	CompareAtPrice     float64  `json:"compare_at_price"`
	Image              string   `json:"image"`
	ProductImage       string   `json:"product_image"`
	Tags               []string `json:"tags"`
	InventoryAvailable bool     `json:"inventory_available"`
}

// VariantID returns the commerce id of the variant the hit describes.
func (h Hit) VariantID() string {
	return "gid://shopify/ProductVariant/" + h.ObjectID
}

type Result struct {
	Hits        []Hit  `json:"hits"`
	NbHits      int    `json:"nbHits"`
	Page        int    `json:"page"`
	NbPages     int    `json:"nbPages"`
	HitsPerPage int    `json:"hitsPerPage"`
	Query       string `json:"query"`
	Index       string `json:"index"`
}

type Config struct {
	Endpoint    string
	AppID       string
	APIKey      string
	Index       string
	HitsPerPage int
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func NewClient(cfg Config, httpClient *http.Client) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = fmt.Sprintf("https://%s-dsn.algolia.net", cfg.AppID)
	}
	cfg.Endpoint = strings.TrimSuffix(cfg.Endpoint, "/")
	if cfg.Index == "" {
		cfg.Index = DefaultIndex
	}
	if cfg.HitsPerPage <= 0 {
		cfg.HitsPerPage = DefaultHitsPerPage
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{cfg: cfg, httpClient: httpClient}
}

// Search runs a free-text query. A page at or beyond the last page of the
// result set is queried again as page 0.
func (c *Client) Search(ctx context.Context, text string, page int) (Result, error) {
	if page < 0 {
		page = 0
	}

	res, err := c.query(ctx, text, page)
	if err != nil {
		return Result{}, err
	}

	if page > 0 && res.Page >= res.NbPages {
		slogctx.Debug(ctx, "Search page out of range, returning first page", "page", page, "nbPages", res.NbPages)
		return c.query(ctx, text, 0)
	}

	return res, nil
}

func (c *Client) query(ctx context.Context, text string, page int) (Result, error) {
	params, err := query.Values(Params{
		Query:         text,
		TypoTolerance: "min",
		HitsPerPage:   c.cfg.HitsPerPage,
		Page:          page,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encoding search params: %w", err)
	}

	body, err := json.Marshal(map[string]any{
		"requests": []map[string]string{{"indexName": c.cfg.Index, "params": params.Encode()}},
	})
	if err != nil {
		return Result{}, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/1/indexes/*/queries", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(appIDHeader, c.cfg.AppID)
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("executing search request: %w: %w", serviceerr.ErrUnexpected, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		slogctx.Error(ctx, "Search request failed", "status", resp.StatusCode, "body", string(snippet))
		return Result{}, fmt.Errorf("search returned status %d: %w", resp.StatusCode, serviceerr.ErrUnexpected)
	}

	var out struct {
		Results []Result `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decoding search response: %w", err)
	}
	if len(out.Results) == 0 {
		return Result{}, fmt.Errorf("search response has no results: %w", serviceerr.ErrUnexpected)
	}

	return out.Results[0], nil
}
