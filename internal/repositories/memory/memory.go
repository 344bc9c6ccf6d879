package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
)

// PreferenceStore keeps preference blobs in a map
type PreferenceStore struct {
	values map[string][]byte
	mu     sync.RWMutex
}

func NewPreferenceStore() *PreferenceStore {
	return &PreferenceStore{
		values: make(map[string][]byte),
	}
}

func (s *PreferenceStore) Load(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, exists := s.values[key]
	if !exists {
		return nil, false, nil
	}
	return append([]byte(nil), raw...), true, nil
}

func (s *PreferenceStore) Save(_ context.Context, key string, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), raw...)
	return nil
}

// SpinStore keeps spin records in insertion order
type SpinStore struct {
	records []*models.SpinRecord
	mu      sync.RWMutex
}

func NewSpinStore() *SpinStore {
	return &SpinStore{}
}

func (s *SpinStore) Create(_ context.Context, record *models.SpinRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *record
	s.records = append(s.records, &r)
	return nil
}

func (s *SpinStore) BulkCreate(ctx context.Context, records []*models.SpinRecord) error {
	for _, r := range records {
		if err := s.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// ListSince returns copies of the records created at or after since, oldest
// first.
func (s *SpinStore) ListSince(_ context.Context, since time.Time) ([]*models.SpinRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.SpinRecord, 0, len(s.records))
	for _, r := range s.records {
		if !r.CreatedAt.Before(since) {
			c := *r
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *SpinStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *SpinStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}
