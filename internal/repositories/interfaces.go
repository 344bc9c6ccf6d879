package repositories

import (
	"context"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
)

// PreferenceRepository stores raw preference blobs under string keys. Callers
// validate what they load.
type PreferenceRepository interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, raw []byte) error
}

type SpinRepository interface {
	Create(ctx context.Context, record *models.SpinRecord) error
	BulkCreate(ctx context.Context, records []*models.SpinRecord) error
	ListSince(ctx context.Context, since time.Time) ([]*models.SpinRecord, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

// WeightsKey is the preference key holding a session's category weights.
func WeightsKey(sessionID string) string {
	return models.WeightsKeyPrefix + ":" + sessionID
}
