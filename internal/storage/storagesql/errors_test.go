package storagesql

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

func TestHandlePgError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    error
		handled bool
	}{
		{
			name:    "Unique violation",
			err:     &pgconn.PgError{Code: "23505"},
			want:    serviceerr.ErrConflict,
			handled: true,
		},
		{
			name:    "Other pg error",
			err:     &pgconn.PgError{Code: "42P01"},
			handled: false,
		},
		{
			name:    "Non pg error",
			err:     errors.New("boom"),
			handled: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := handlePgError(tt.err)
			assert.Equal(t, tt.handled, ok)
			if tt.handled {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Equal(t, tt.err, got)
			}
		})
	}
}
