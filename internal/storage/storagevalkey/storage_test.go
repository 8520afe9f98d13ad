package storagevalkey_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	"github.com/openkcm/storefront-sync/internal/dbtest/valkeytest"
	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage"
	"github.com/openkcm/storefront-sync/internal/storage/storagevalkey"
)

var client valkey.Client

func TestMain(m *testing.M) {
	ctx := context.Background()

	valkeyClient, _, terminate := valkeytest.Start(ctx)
	client = valkeyClient

	code := m.Run()
	terminate(ctx)

	os.Exit(code)
}

func prepareValue(t *testing.T, prefix, key, value string) {
	t.Helper()

	k := fmt.Sprintf("%s:storage:%s", prefix, key)
	err := client.Do(t.Context(), client.B().Set().Key(k).Value(value).Build()).Error()
	require.NoError(t, err, "inserting value")
}

func TestStorage_Get(t *testing.T) {
	const prefix = "storefront-sync-get-test"

	prepareValue(t, prefix, storage.KeyCartID, "gid://shopify/Cart/one")

	tests := []struct {
		name      string
		key       string
		want      string
		assertErr assert.ErrorAssertionFunc
	}{
		{
			name:      "Existing key",
			key:       storage.KeyCartID,
			want:      "gid://shopify/Cart/one",
			assertErr: assert.NoError,
		},
		{
			name: "Missing key",
			key:  "does-not-exist",
			assertErr: func(t assert.TestingT, err error, _ ...any) bool {
				return assert.ErrorIs(t, err, serviceerr.ErrNotFound)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := storagevalkey.New(client, prefix)

			got, err := s.Get(t.Context(), tt.key)
			if !tt.assertErr(t, err, fmt.Sprintf("Storage.Get() error %v", err)) || err != nil {
				return
			}

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStorage_SetAndDelete(t *testing.T) {
	const prefix = "storefront-sync-set-test:"

	s := storagevalkey.New(client, prefix)
	scoped := storage.Scoped(s, "client-1")

	require.NoError(t, scoped.Set(t.Context(), storage.KeyAccessToken, `{"accessToken":"abc"}`))
	got, err := scoped.Get(t.Context(), storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"abc"}`, got)

	require.NoError(t, scoped.Set(t.Context(), storage.KeyAccessToken, `{"accessToken":"def"}`), "upsert")
	got, err = scoped.Get(t.Context(), storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, `{"accessToken":"def"}`, got)

	require.NoError(t, scoped.Delete(t.Context(), storage.KeyAccessToken))
	_, err = scoped.Get(t.Context(), storage.KeyAccessToken)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)

	assert.NoError(t, scoped.Delete(t.Context(), "never-set"), "deleting a missing key")
}
