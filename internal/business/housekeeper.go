package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/openkcm/storefront-sync/internal/config"
	"github.com/openkcm/storefront-sync/internal/storage/storagesql"
)

var errHousekeepingUnsupported = errors.New("housekeeping requires the postgres storage driver")

// HousekeeperMain starts the house keeping jobs
func HousekeeperMain(ctx context.Context, cfg *config.Config) error {
	if cfg.Storage.Driver != config.StorageDriverPostgres {
		return errHousekeepingUnsupported
	}

	db, err := newPgxPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialise the storage: %w", err)
	}
	defer db.Close()

	return housekeep(ctx, storagesql.New(db), cfg.Housekeeper)
}

type staleDeleter interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

func housekeep(ctx context.Context, st staleDeleter, cfg config.Housekeeper) error {
	c := time.Tick(cfg.TriggerInterval)
	for {
		n, err := st.DeleteStale(ctx, time.Now().Add(-cfg.Retention))
		if err != nil {
			slogctx.Error(ctx, "Error during storage housekeeping", "error", err)
		} else {
			slogctx.Info(ctx, "Purged stale client keys", "count", n)
		}

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}
