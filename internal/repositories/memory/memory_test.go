package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/chrisdamba/whattoeat/internal/repositories"
)

var (
	_ repositories.PreferenceRepository = (*PreferenceStore)(nil)
	_ repositories.SpinRepository       = (*SpinStore)(nil)
)

func TestPreferenceStore(t *testing.T) {
	ctx := context.Background()
	s := NewPreferenceStore()
	key := repositories.WeightsKey("abc")
	if key != "foodWheelWeights:abc" {
		t.Fatalf("WeightsKey() = %q", key)
	}

	if _, ok, err := s.Load(ctx, key); ok || err != nil {
		t.Fatalf("Load() on empty store = %v, %v", ok, err)
	}

	raw := []byte(`{"thai":3}`)
	if err := s.Save(ctx, key, raw); err != nil {
		t.Fatal(err)
	}
	raw[2] = 'X'
	got, ok, err := s.Load(ctx, key)
	if err != nil || !ok || string(got) != `{"thai":3}` {
		t.Fatalf("Load() = %s, %v, %v", got, ok, err)
	}
}

func TestSpinStore(t *testing.T) {
	ctx := context.Background()
	s := NewSpinStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	err := s.BulkCreate(ctx, []*models.SpinRecord{
		{ID: "b", CreatedAt: base.Add(time.Hour)},
		{ID: "a", CreatedAt: base},
		{ID: "old", CreatedAt: base.Add(-time.Hour)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count(ctx); n != 3 {
		t.Fatalf("Count() = %d, want 3", n)
	}

	got, err := s.ListSince(ctx, base)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("ListSince() = %+v", got)
	}
	got[0].ID = "mutated"
	again, _ := s.ListSince(ctx, base)
	if again[0].ID != "a" {
		t.Error("ListSince() leaked internal records")
	}

	if err := s.DeleteAll(ctx); err != nil {
		t.Fatal(err)
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("Count() after DeleteAll = %d", n)
	}
}

func TestSpinStoreConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewSpinStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Create(ctx, &models.SpinRecord{CreatedAt: time.Now()})
			_, _ = s.ListSince(ctx, time.Time{})
		}()
	}
	wg.Wait()
	if n, _ := s.Count(ctx); n != 50 {
		t.Errorf("Count() = %d, want 50", n)
	}
}
