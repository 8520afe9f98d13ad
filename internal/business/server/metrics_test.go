package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/storefront-sync/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		BaseConfig: commoncfg.BaseConfig{
			Application: commoncfg.Application{
				Name:        "test-app",
				Environment: "test",
			},
		},
	}
}

func TestInitMeters(t *testing.T) {
	err := initMeters(t.Context(), testConfig())
	assert.NoError(t, err)
	assert.NotNil(t, counter)
	assert.NotNil(t, hist)
}

func TestNewTraceMiddleware(t *testing.T) {
	cfg := testConfig()
	require.NoError(t, initMeters(t.Context(), cfg))

	middleware := newTraceMiddleware(cfg)

	tests := []struct {
		name      string
		handler   func(ctx context.Context, w http.ResponseWriter, r *http.Request, request any) (any, error)
		header    map[string]string
		wantResp  any
		assertErr assert.ErrorAssertionFunc
	}{
		{
			name: "passes the response through",
			handler: func(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
				return "ok", nil
			},
			wantResp:  "ok",
			assertErr: assert.NoError,
		},
		{
			name: "propagates handler errors",
			handler: func(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
				return nil, errors.New("handler error")
			},
			assertErr: assert.Error,
		},
		{
			name: "accepts a parent trace",
			handler: func(ctx context.Context, _ http.ResponseWriter, _ *http.Request, _ any) (any, error) {
				return "traced", nil
			},
			header:    map[string]string{"Traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"},
			wantResp:  "traced",
			assertErr: assert.NoError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := middleware(tt.handler, "GetCart")

			req := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}

			resp, err := wrapped(t.Context(), httptest.NewRecorder(), req, nil)
			tt.assertErr(t, err)
			assert.Equal(t, tt.wantResp, resp)
		})
	}
}
