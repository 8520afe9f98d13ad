package storagesql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openkcm/storefront-sync/internal/serviceerr"
)

type Storage struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Storage {
	return &Storage{
		db: db,
	}
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM local_storage WHERE storage_key = $1;`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", serviceerr.ErrNotFound
		}

		return "", fmt.Errorf("scanning row: %w", err)
	}

	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.Exec(ctx,
		`INSERT INTO local_storage (storage_key, value, updated_at)
			 VALUES ($1, $2, now())
			 ON CONFLICT (storage_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;`,
		key, value,
	); err != nil {
		if err, ok := handlePgError(err); ok {
			return err
		}

		return fmt.Errorf("upserting into local_storage: %w", err)
	}

	return nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM local_storage WHERE storage_key = $1;`, key); err != nil {
		return fmt.Errorf("executing sql query: %w", err)
	}

	return nil
}

// DeleteStale removes every key that has not been written since before.
// It returns the number of removed keys.
func (s *Storage) DeleteStale(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM local_storage WHERE updated_at < $1;`, before)
	if err != nil {
		return 0, fmt.Errorf("deleting stale keys: %w", err)
	}

	return tag.RowsAffected(), nil
}
