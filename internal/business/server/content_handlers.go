package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/oapi-codegen/runtime"
)

func (s *apiServer) searchProducts(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	var (
		text string
		page *int
	)

	if err := runtime.BindQueryParameter("form", true, true, "q", r.URL.Query(), &text); err != nil {
		return nil, newBadRequest("invalid format for parameter q: %s", err)
	}
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		return nil, newBadRequest("invalid format for parameter page: %s", err)
	}
	if deref(page) < 0 {
		return nil, newBadRequest("page must not be negative")
	}

	return s.search.Search(ctx, text, deref(page))
}

// getPage loads a content page. Without a locale parameter the page is
// loaded in the language of the client's cart.
func (s *apiServer) getPage(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	var locale *string
	if err := runtime.BindQueryParameter("form", true, false, "locale", r.URL.Query(), &locale); err != nil {
		return nil, newBadRequest("invalid format for parameter locale: %s", err)
	}

	if locale == nil {
		c, err := s.client(ctx)
		if err != nil {
			return nil, err
		}
		lang := strings.ToLower(string(c.Cart().Language()))
		locale = &lang
	}

	return s.pages.Load(ctx, r.PathValue("slug"), *locale)
}
