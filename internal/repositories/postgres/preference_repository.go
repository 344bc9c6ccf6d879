package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PreferenceRepository struct {
	pool *pgxpool.Pool
}

func NewPreferenceRepository(pool *pgxpool.Pool) *PreferenceRepository {
	return &PreferenceRepository{pool: pool}
}

func (r *PreferenceRepository) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := r.pool.QueryRow(ctx, "SELECT value::text FROM preferences WHERE key = $1", key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (r *PreferenceRepository) Save(ctx context.Context, key string, raw []byte) error {
	query := `
        INSERT INTO preferences (key, value, updated_at)
        VALUES ($1, $2::jsonb, now())
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `
	_, err := r.pool.Exec(ctx, query, key, string(raw))
	return err
}
