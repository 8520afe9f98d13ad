package server

import (
	"context"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/openkcm/storefront-sync/internal/cart"
	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

// CartModel is a cart snapshot with its totals formatted for display.
type CartModel struct {
	commerce.Cart

	FormattedSubtotal string `json:"formattedSubtotal"`
	FormattedTotal    string `json:"formattedTotal"`
}

// AddLineRequest adds one unit of a merchandise. QuantityAvailable is the
// stock the caller last saw and is required.
type AddLineRequest struct {
	MerchandiseID     string `json:"merchandiseId"`
	QuantityAvailable *int   `json:"quantityAvailable"`
}

type EditLineRequest struct {
	Quantity int `json:"quantity"`
}

type CheckoutResponse struct {
	WebURL string `json:"webUrl"`
}

func newCartModel(c commerce.Cart, lang commerce.LanguageCode) CartModel {
	return CartModel{
		Cart:              c,
		FormattedSubtotal: c.Cost.SubtotalAmount.Format(lang),
		FormattedTotal:    c.Cost.TotalAmount.Format(lang),
	}
}

// cartResult renders the outcome of a cart mutation. A failed mutation is
// reported with the cart it was reconciled to, or the unchanged snapshot when
// it was rejected locally.
func cartResult(res cart.Result, lang commerce.LanguageCode) (any, error) {
	err := res.Err()
	if err == nil {
		return newCartModel(res.Cart, lang), nil
	}

	body, status := toErrorModel(err)
	if res.RefreshErr == nil && res.Cart.ID != "" {
		body.Cart = &res.Cart
	}

	return JSONResponse{StatusCode: status, Body: body}, nil
}

func lineIDParam(r *http.Request) (string, error) {
	var lineID string
	err := runtime.BindStyledParameterWithOptions("simple", "lineID", r.PathValue("lineID"), &lineID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", newBadRequest("invalid format for parameter lineID: %s", err)
	}

	return lineID, nil
}

func (s *apiServer) getCart(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, ok := c.Cart().Snapshot()
	if !ok {
		return nil, serviceerr.ErrCartNotReady
	}

	return newCartModel(snapshot, c.Cart().Language()), nil
}

func (s *apiServer) refreshCart(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := c.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	return newCartModel(snapshot, c.Cart().Language()), nil
}

func (s *apiServer) addCartLine(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	var req AddLineRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}
	if req.MerchandiseID == "" {
		return nil, newBadRequest("merchandiseId is required")
	}
	if req.QuantityAvailable == nil || *req.QuantityAvailable < 0 {
		return nil, newBadRequest("quantityAvailable is required and must not be negative")
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	res := c.AddToCart(ctx, cart.Merchandise{ID: req.MerchandiseID, QuantityAvailable: *req.QuantityAvailable})
	return cartResult(res, c.Cart().Language())
}

func (s *apiServer) editCartLine(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	lineID, err := lineIDParam(r)
	if err != nil {
		return nil, err
	}

	var req EditLineRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	res := c.EditLine(ctx, lineID, req.Quantity)
	return cartResult(res, c.Cart().Language())
}

func (s *apiServer) deleteCartLine(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	lineID, err := lineIDParam(r)
	if err != nil {
		return nil, err
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	res := c.DeleteLine(ctx, lineID)
	return cartResult(res, c.Cart().Language())
}

func (s *apiServer) wipeCart(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return cartResult(c.WipeCart(ctx), c.Cart().Language())
}

func (s *apiServer) checkout(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	url, err := c.Checkout(ctx)
	if err != nil {
		return nil, err
	}

	return JSONResponse{
		StatusCode: http.StatusCreated,
		Body:       CheckoutResponse{WebURL: url},
	}, nil
}
