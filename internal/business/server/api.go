package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime/strictmiddleware/nethttp"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/content"
	"github.com/openkcm/storefront-sync/internal/middleware/clientid"
	"github.com/openkcm/storefront-sync/internal/search"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storefront"
)

// PageLoader loads content pages with their commerce references resolved.
type PageLoader interface {
	Load(ctx context.Context, slug, locale string) (content.PageData, error)
}

// Searcher queries the product search index.
type Searcher interface {
	Search(ctx context.Context, text string, page int) (search.Result, error)
}

// Dependencies are the domain services the API is served from.
type Dependencies struct {
	Registry *storefront.Registry
	Pages    PageLoader
	Search   Searcher
}

// ErrorModel is the body of every error response.
type ErrorModel struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	// Cart is the reconciled cart after a failed cart mutation.
	Cart *commerce.Cart `json:"cart,omitempty"`
}

// JSONResponse lets an operation choose its status code.
type JSONResponse struct {
	StatusCode int
	Body       any
}

// apiServer serves the storefront API.
type apiServer struct {
	registry *storefront.Registry
	pages    PageLoader
	search   Searcher
}

func newAPIServer(deps Dependencies) *apiServer {
	return &apiServer{
		registry: deps.Registry,
		pages:    deps.Pages,
		search:   deps.Search,
	}
}

type operation struct {
	id      string
	pattern string
	handle  nethttp.StrictHTTPHandlerFunc
}

func (s *apiServer) operations() []operation {
	return []operation{
		{id: "GetSession", pattern: "GET /v1/session", handle: s.getSession},
		{id: "Login", pattern: "POST /v1/auth/login", handle: s.login},
		{id: "Signup", pattern: "POST /v1/auth/signup", handle: s.signup},
		{id: "Logout", pattern: "POST /v1/auth/logout", handle: s.logout},
		{id: "SetLocale", pattern: "PUT /v1/locale", handle: s.setLocale},
		{id: "GetCart", pattern: "GET /v1/cart", handle: s.getCart},
		{id: "RefreshCart", pattern: "POST /v1/cart/refresh", handle: s.refreshCart},
		{id: "AddCartLine", pattern: "POST /v1/cart/lines", handle: s.addCartLine},
		{id: "EditCartLine", pattern: "PATCH /v1/cart/lines/{lineID}", handle: s.editCartLine},
		{id: "DeleteCartLine", pattern: "DELETE /v1/cart/lines/{lineID}", handle: s.deleteCartLine},
		{id: "WipeCart", pattern: "POST /v1/cart/wipe", handle: s.wipeCart},
		{id: "Checkout", pattern: "POST /v1/checkout", handle: s.checkout},
		{id: "GetCustomer", pattern: "GET /v1/customer", handle: s.getCustomer},
		{id: "ListOrders", pattern: "GET /v1/customer/orders", handle: s.listOrders},
		{id: "ListAddresses", pattern: "GET /v1/customer/addresses", handle: s.listAddresses},
		{id: "ListCollectionProducts", pattern: "GET /v1/collections/{handle}/products", handle: s.listCollectionProducts},
		{id: "OverrideCollectionProducts", pattern: "PUT /v1/collections/{handle}/products", handle: s.overrideCollectionProducts},
		{id: "Search", pattern: "GET /v1/search", handle: s.searchProducts},
		{id: "GetPage", pattern: "GET /v1/pages/{slug}", handle: s.getPage},
	}
}

// handler registers every operation wrapped by middlewares on a new mux.
func (s *apiServer) handler(middlewares ...nethttp.StrictHTTPMiddlewareFunc) http.Handler {
	mux := http.NewServeMux()

	for _, op := range s.operations() {
		f := op.handle
		for _, m := range middlewares {
			f = m(f, op.id)
		}

		mux.HandleFunc(op.pattern, func(w http.ResponseWriter, r *http.Request) {
			response, err := f(r.Context(), w, r, nil)
			if err != nil {
				writeError(r.Context(), w, err)
				return
			}
			writeResponse(r.Context(), w, response)
		})
	}

	return mux
}

// client returns the client instance the request belongs to.
func (s *apiServer) client(ctx context.Context) (*storefront.Client, error) {
	id, err := clientid.ClientIDFromContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", serviceerr.ErrUnknown, err)
	}

	c, err := s.registry.Get(ctx, id)
	if err != nil {
		// A client whose cart could not be loaded still serves, its cart
		// operations report the missing cart themselves.
		slogctx.Warn(ctx, "Client started degraded", "error", err)
	}

	return c, nil
}

func writeResponse(ctx context.Context, w http.ResponseWriter, response any) {
	status := http.StatusOK
	body := response

	if r, ok := response.(JSONResponse); ok {
		status = r.StatusCode
		body = r.Body
	}

	writeJSON(ctx, w, status, body)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	body, status := toErrorModel(err)
	if status >= http.StatusInternalServerError {
		slogctx.Error(ctx, "Request failed", "error", err)
	} else {
		slogctx.Debug(ctx, "Request rejected", "error", err)
	}

	writeJSON(ctx, w, status, body)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	if body == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slogctx.Error(ctx, "Failed to encode response", "error", err)
	}
}

// toErrorModel maps err to its API representation. User errors reported by
// the commerce API carry their user-facing message.
func toErrorModel(err error) (model ErrorModel, httpStatus int) {
	var userErrs commerce.UserErrors
	if errors.As(err, &userErrs) {
		return ErrorModel{
			Error:            string(serviceerr.CodeUserError),
			ErrorDescription: userErrs.UserMessage(),
		}, serviceerr.CodeUserError.HTTPStatus()
	}

	var serviceErr *serviceerr.Error
	if !errors.As(err, &serviceErr) {
		serviceErr = serviceerr.ErrUnknown
	}

	return ErrorModel{
		Error:            string(serviceErr.Err),
		ErrorDescription: serviceErr.Description,
	}, serviceErr.Err.HTTPStatus()
}

func newBadRequest(format string, args ...any) error {
	return &serviceerr.Error{
		Err:         serviceerr.CodeInvalidRequest,
		Description: fmt.Sprintf(format, args...),
	}
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return newBadRequest("request body is missing")
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return newBadRequest("decoding request body: %s", err)
	}

	return nil
}
