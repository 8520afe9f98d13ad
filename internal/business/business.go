package business

import (
	"context"
	"fmt"
	"net/http"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/business/server"
	"github.com/openkcm/storefront-sync/internal/commerce"
	"github.com/openkcm/storefront-sync/internal/config"
	"github.com/openkcm/storefront-sync/internal/content"
	"github.com/openkcm/storefront-sync/internal/graphql"
	"github.com/openkcm/storefront-sync/internal/search"
	"github.com/openkcm/storefront-sync/internal/storage"
	"github.com/openkcm/storefront-sync/internal/storage/storagememory"
	"github.com/openkcm/storefront-sync/internal/storage/storagesql"
	"github.com/openkcm/storefront-sync/internal/storage/storagevalkey"
	"github.com/openkcm/storefront-sync/internal/storefront"
)

// Main starts the storefront API server.
func Main(ctx context.Context, cfg *config.Config) error {
	st, closeStorage, err := initStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising storage: %w", err)
	}
	defer closeStorage()

	deps, closeFn, err := initDependencies(ctx, cfg, st)
	if err != nil {
		return fmt.Errorf("initialising dependencies: %w", err)
	}
	defer closeFn()

	return server.StartHTTPServer(ctx, cfg, deps)
}

func initDependencies(ctx context.Context, cfg *config.Config, st storage.Storage) (_ server.Dependencies, closeFn func(), _ error) {
	commerceClient, err := newCommerceClient(cfg.Commerce)
	if err != nil {
		return server.Dependencies{}, nil, err
	}

	contentClient, err := newContentClient(cfg.Content)
	if err != nil {
		return server.Dependencies{}, nil, err
	}

	searchClient, err := newSearchClient(cfg.Search)
	if err != nil {
		return server.Dependencies{}, nil, err
	}

	recorder, err := storefront.NewRecorder(server.NewMeter(cfg))
	if err != nil {
		return server.Dependencies{}, nil, fmt.Errorf("creating store meters: %w", err)
	}

	registry := storefront.NewRegistry(ctx, commerceClient, st, cfg.Stores.ClientIdleTTL, storefront.Options{
		PageSize:        cfg.Stores.PageSize,
		CatalogPageSize: cfg.Stores.CatalogPageSize,
		Language:        commerce.LanguageFromLocale(ctx, cfg.Stores.Language),
		Recorder:        recorder,
		ForgetOnClose:   cfg.Storage.Driver == config.StorageDriverMemory || cfg.Storage.Driver == "",
	})

	deps := server.Dependencies{
		Registry: registry,
		Pages:    content.NewPageLoader(contentClient, commerceClient),
		Search:   searchClient,
	}

	return deps, registry.Close, nil
}

func newCommerceClient(cfg config.Commerce) (*commerce.Client, error) {
	token, err := commoncfg.LoadValueFromSourceRef(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("loading commerce access token: %w", err)
	}

	gql := graphql.NewClient(cfg.Endpoint,
		graphql.WithHeader(commerce.StorefrontTokenHeader, string(token)),
		graphql.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	return commerce.NewClient(gql), nil
}

func newContentClient(cfg config.Content) (*content.Client, error) {
	token, err := commoncfg.LoadValueFromSourceRef(cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("loading content access token: %w", err)
	}

	gql := graphql.NewClient(cfg.Endpoint,
		graphql.WithHeader("Authorization", "Bearer "+string(token)),
		graphql.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)

	return content.NewClient(gql), nil
}

func newSearchClient(cfg config.Search) (*search.Client, error) {
	apiKey, err := commoncfg.LoadValueFromSourceRef(cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("loading search api key: %w", err)
	}

	return search.NewClient(search.Config{
		Endpoint:    cfg.Endpoint,
		AppID:       cfg.AppID,
		APIKey:      string(apiKey),
		Index:       cfg.Index,
		HitsPerPage: cfg.HitsPerPage,
	}, &http.Client{Timeout: cfg.Timeout}), nil
}

// initStorage opens the storage backend selected by the configured driver.
func initStorage(ctx context.Context, cfg *config.Config) (_ storage.Storage, closeFn func(), _ error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory, "":
		slogctx.Warn(ctx, "Using in-memory storage, persisted client state is lost on restart")
		return storagememory.New(), func() {}, nil
	case config.StorageDriverValKey:
		client, err := newValKeyClient(cfg.ValKey)
		if err != nil {
			return nil, nil, err
		}
		return storagevalkey.New(client, cfg.ValKey.Prefix), client.Close, nil
	case config.StorageDriverPostgres:
		db, err := newPgxPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return storagesql.New(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func newPgxPool(ctx context.Context, cfg config.Database) (*pgxpool.Pool, error) {
	connStr, err := config.MakeConnStr(cfg)
	if err != nil {
		return nil, fmt.Errorf("making dsn from config: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing pgxpool config: %w", err)
	}
	poolCfg.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("initialising pgxpool connection: %w", err)
	}

	return db, nil
}

func newValKeyClient(cfg config.ValKey) (valkey.Client, error) {
	valkeyHost, err := commoncfg.LoadValueFromSourceRef(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("loading valkey host: %w", err)
	}

	valkeyUsername, err := commoncfg.LoadValueFromSourceRef(cfg.User)
	if err != nil {
		return nil, fmt.Errorf("loading valkey username: %w", err)
	}

	valkeyPassword, err := commoncfg.LoadValueFromSourceRef(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("loading valkey password: %w", err)
	}

	valkeyOpts := valkey.ClientOption{
		InitAddress: []string{string(valkeyHost)},
		Username:    string(valkeyUsername),
		Password:    string(valkeyPassword),
	}

	if cfg.SecretRef.Type == commoncfg.MTLSSecretType {
		tlsConfig, err := commoncfg.LoadMTLSConfig(&cfg.SecretRef.MTLS)
		if err != nil {
			return nil, fmt.Errorf("loading valkey mTLS config from secret ref: %w", err)
		}

		valkeyOpts.TLSConfig = tlsConfig
	}

	valkeyClient, err := valkey.NewClient(valkeyOpts)
	if err != nil {
		return nil, fmt.Errorf("creating a new valkey client: %w", err)
	}

	return valkeyClient, nil
}
