package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertSpin = `
    INSERT INTO wheel_spins (
        id, session_id, category, section_index, item_id, item_name,
        rotation, weighted, latitude, longitude, location_default,
        restaurant_count, fallback, created_at
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

type SpinRepository struct {
	pool *pgxpool.Pool
}

func NewSpinRepository(pool *pgxpool.Pool) *SpinRepository {
	return &SpinRepository{pool: pool}
}

func spinArgs(s *models.SpinRecord) []any {
	return []any{
		s.ID,
		s.SessionID,
		string(s.Category),
		s.SectionIndex,
		s.ItemID,
		s.ItemName,
		s.Rotation,
		s.Weighted,
		s.Location.Lat,
		s.Location.Lng,
		s.LocationDefault,
		s.RestaurantCount,
		s.Fallback,
		s.CreatedAt,
	}
}

func (r *SpinRepository) Create(ctx context.Context, record *models.SpinRecord) error {
	_, err := r.pool.Exec(ctx, insertSpin, spinArgs(record)...)
	return err
}

func (r *SpinRepository) BulkCreate(ctx context.Context, records []*models.SpinRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(insertSpin, spinArgs(record)...)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *SpinRepository) ListSince(ctx context.Context, since time.Time) ([]*models.SpinRecord, error) {
	query := `
        SELECT
            id, session_id, category, section_index, item_id, item_name,
            rotation, weighted, latitude, longitude, location_default,
            restaurant_count, fallback, created_at
        FROM wheel_spins
        WHERE created_at >= $1
        ORDER BY created_at
    `
	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.SpinRecord
	for rows.Next() {
		var s models.SpinRecord
		var category string
		err := rows.Scan(
			&s.ID,
			&s.SessionID,
			&category,
			&s.SectionIndex,
			&s.ItemID,
			&s.ItemName,
			&s.Rotation,
			&s.Weighted,
			&s.Location.Lat,
			&s.Location.Lng,
			&s.LocationDefault,
			&s.RestaurantCount,
			&s.Fallback,
			&s.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		s.Category = models.FoodCategory(category)
		records = append(records, &s)
	}
	return records, rows.Err()
}

func (r *SpinRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM wheel_spins").Scan(&count)
	return count, err
}

func (r *SpinRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE wheel_spins")
	return err
}
