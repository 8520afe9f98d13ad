package configcmd

import (
	"bytes"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/storefront-sync/internal/config"
)

func TestWrite(t *testing.T) {
	cfg := &config.Config{
		HTTP: config.HTTPServer{Address: ":8080"},
		Commerce: config.Commerce{
			Endpoint:    "https://shop.example/api/graphql.json",
			AccessToken: commoncfg.SourceRef{Source: "embedded", Value: "storefront-token"},
		},
		Storage: config.Storage{Driver: config.StorageDriverValKey},
	}

	var buf bytes.Buffer
	require.NoError(t, write(&buf, cfg))

	assert.NotContains(t, buf.String(), "storefront-token")

	var got config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, ":8080", got.HTTP.Address)
	assert.Equal(t, config.StorageDriverValKey, got.Storage.Driver)
	assert.Equal(t, cfg.Commerce.Endpoint, got.Commerce.Endpoint)
}
