package storagememory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
	"github.com/openkcm/storefront-sync/internal/storage"
	"github.com/openkcm/storefront-sync/internal/storage/storagememory"
)

func TestStorage(t *testing.T) {
	s := storagememory.New()

	_, err := s.Get(t.Context(), storage.KeyCartID)
	require.ErrorIs(t, err, serviceerr.ErrNotFound)

	require.NoError(t, s.Set(t.Context(), storage.KeyCartID, "gid://shopify/Cart/1"))
	got, err := s.Get(t.Context(), storage.KeyCartID)
	require.NoError(t, err)
	assert.Equal(t, "gid://shopify/Cart/1", got)

	require.NoError(t, s.Delete(t.Context(), storage.KeyCartID))
	require.NoError(t, s.Delete(t.Context(), storage.KeyCartID), "deleting a missing key")
	_, err = s.Get(t.Context(), storage.KeyCartID)
	assert.ErrorIs(t, err, serviceerr.ErrNotFound)
}

func TestScoped(t *testing.T) {
	backend := storagememory.New()
	one := storage.Scoped(backend, "client-one")
	two := storage.Scoped(backend, "client-two:")

	require.NoError(t, one.Set(t.Context(), storage.KeyAccessToken, "token-one"))
	require.NoError(t, two.Set(t.Context(), storage.KeyAccessToken, "token-two"))

	got, err := one.Get(t.Context(), storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "token-one", got)

	got, err = backend.Get(t.Context(), "client-two:"+storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "token-two", got)

	require.NoError(t, one.Delete(t.Context(), storage.KeyAccessToken))
	_, err = two.Get(t.Context(), storage.KeyAccessToken)
	require.NoError(t, err, "deleting in one namespace must not touch another")
	assert.Equal(t, 1, backend.Len())
}
