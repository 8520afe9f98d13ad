package business

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/storefront-sync/internal/config"
)

type fakeDeleter struct {
	calls  atomic.Int32
	before atomic.Pointer[time.Time]
	err    error
}

func (f *fakeDeleter) DeleteStale(_ context.Context, before time.Time) (int64, error) {
	f.calls.Add(1)
	f.before.Store(&before)
	return 3, f.err
}

func TestHousekeeperMain_RequiresPostgres(t *testing.T) {
	err := HousekeeperMain(t.Context(), &config.Config{Storage: config.Storage{Driver: config.StorageDriverMemory}})
	assert.ErrorIs(t, err, errHousekeepingUnsupported)
}

func TestHousekeeperMain_InvalidDatabaseConfig(t *testing.T) {
	cfg := &config.Config{
		Storage: config.Storage{Driver: config.StorageDriverPostgres},
		Database: config.Database{
			Host:     commoncfg.SourceRef{Source: "file", File: commoncfg.CredentialFile{Path: "/nonexistent/file"}},
			Port:     "5432",
			Name:     "testdb",
			User:     commoncfg.SourceRef{Source: "embedded", Value: "user"},
			Password: commoncfg.SourceRef{Source: "embedded", Value: "pass"},
		},
	}

	err := HousekeeperMain(t.Context(), cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialise the storage")
}

func TestHousekeep(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "purges until cancelled"},
		{name: "keeps going after a failure", err: errors.New("db down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			deleter := &fakeDeleter{err: tt.err}

			done := make(chan error, 1)
			go func() {
				done <- housekeep(ctx, deleter, config.Housekeeper{TriggerInterval: 10 * time.Millisecond, Retention: time.Hour})
			}()

			require.Eventually(t, func() bool { return deleter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
			cancel()
			require.NoError(t, <-done)

			before := deleter.before.Load()
			require.NotNil(t, before)
			assert.WithinDuration(t, time.Now().Add(-time.Hour), *before, time.Second)
		})
	}
}
