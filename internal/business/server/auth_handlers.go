package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/auth"
	"github.com/openkcm/storefront-sync/internal/commerce"
)

type SessionModel struct {
	Initialized bool       `json:"initialized"`
	Processing  bool       `json:"processing"`
	LoggedIn    bool       `json:"loggedIn"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

type SignupResponse struct {
	CustomerID string `json:"customerId"`
}

type LocaleRequest struct {
	Locale string `json:"locale"`
}

func sessionModel(store *auth.Store) SessionModel {
	model := SessionModel{
		Initialized: store.Initialized(),
		Processing:  store.Processing(),
	}

	if session, ok := store.Session(); ok {
		model.LoggedIn = true
		model.ExpiresAt = &session.ExpiresAt
	}

	return model
}

func (s *apiServer) getSession(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	return sessionModel(c.Auth()), nil
}

func (s *apiServer) login(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	var creds auth.Credentials
	if err := decodeBody(r, &creds); err != nil {
		return nil, err
	}
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return nil, newBadRequest("email and password are required")
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	slogctx.Debug(ctx, "Login() called")
	defer slogctx.Debug(ctx, "Login() completed")

	if _, err := c.Login(ctx, creds); err != nil {
		return nil, err
	}

	return sessionModel(c.Auth()), nil
}

func (s *apiServer) signup(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	var in commerce.SignupInput
	if err := decodeBody(r, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return nil, newBadRequest("email and password are required")
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	id, err := c.Signup(ctx, in)
	if err != nil {
		return nil, err
	}

	return JSONResponse{
		StatusCode: http.StatusCreated,
		Body:       SignupResponse{CustomerID: id},
	}, nil
}

func (s *apiServer) logout(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.Logout(ctx); err != nil {
		return nil, err
	}

	return sessionModel(c.Auth()), nil
}

func (s *apiServer) setLocale(ctx context.Context, _ http.ResponseWriter, r *http.Request, _ any) (any, error) {
	var req LocaleRequest
	if err := decodeBody(r, &req); err != nil {
		return nil, err
	}

	c, err := s.client(ctx)
	if err != nil {
		return nil, err
	}

	snapshot, err := c.SetLocale(ctx, req.Locale)
	if err != nil {
		return nil, err
	}

	return newCartModel(snapshot, c.Cart().Language()), nil
}
