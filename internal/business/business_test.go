package business

import (
	"testing"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/storefront-sync/internal/config"
	"github.com/openkcm/storefront-sync/internal/storage/storagememory"
)

var missingFile = commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/file"}}

func TestInitStorage(t *testing.T) {
	tests := []struct {
		name      string
		cfg       *config.Config
		errSubstr string
	}{
		{
			name: "memory",
			cfg:  &config.Config{Storage: config.Storage{Driver: config.StorageDriverMemory}},
		},
		{
			name: "default is memory",
			cfg:  &config.Config{},
		},
		{
			name:      "unknown driver",
			cfg:       &config.Config{Storage: config.Storage{Driver: "sqlite"}},
			errSubstr: `unknown storage driver "sqlite"`,
		},
		{
			name: "valkey with unreadable host",
			cfg: &config.Config{
				Storage: config.Storage{Driver: config.StorageDriverValKey},
				ValKey:  config.ValKey{Host: missingFile},
			},
			errSubstr: "loading valkey host",
		},
		{
			name: "postgres with unreadable host",
			cfg: &config.Config{
				Storage:  config.Storage{Driver: config.StorageDriverPostgres},
				Database: config.Database{Host: missingFile},
			},
			errSubstr: "making dsn from config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, closeFn, err := initStorage(t.Context(), tt.cfg)
			if tt.errSubstr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errSubstr)
				return
			}

			require.NoError(t, err)
			defer closeFn()
			assert.IsType(t, &storagememory.Storage{}, st)
		})
	}
}

func TestInitDependencies(t *testing.T) {
	embedded := func(v string) commoncfg.SourceRef {
		return commoncfg.SourceRef{Source: "embedded", Value: v}
	}

	validConfig := func() *config.Config {
		return &config.Config{
			BaseConfig: commoncfg.BaseConfig{
				Application: commoncfg.Application{Name: "test-app"},
			},
			Commerce: config.Commerce{Endpoint: "https://shop.example/api/graphql.json", AccessToken: embedded("token")},
			Content:  config.Content{Endpoint: "https://cms.example/graphql", AccessToken: embedded("token")},
			Search:   config.Search{AppID: "APP", APIKey: embedded("key")},
			Stores:   config.Stores{Language: "es"},
		}
	}

	t.Run("builds the registry and clients", func(t *testing.T) {
		deps, closeFn, err := initDependencies(t.Context(), validConfig(), storagememory.New())
		require.NoError(t, err)
		defer closeFn()

		assert.NotNil(t, deps.Registry)
		assert.NotNil(t, deps.Pages)
		assert.NotNil(t, deps.Search)
	})

	secrets := []struct {
		name      string
		mutate    func(*config.Config)
		errSubstr string
	}{
		{name: "commerce token", mutate: func(c *config.Config) { c.Commerce.AccessToken = missingFile }, errSubstr: "loading commerce access token"},
		{name: "content token", mutate: func(c *config.Config) { c.Content.AccessToken = missingFile }, errSubstr: "loading content access token"},
		{name: "search key", mutate: func(c *config.Config) { c.Search.APIKey = missingFile }, errSubstr: "loading search api key"},
	}

	for _, tt := range secrets {
		t.Run("unreadable "+tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			_, _, err := initDependencies(t.Context(), cfg, storagememory.New())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}
