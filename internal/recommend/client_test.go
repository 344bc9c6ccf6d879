package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chrisdamba/whattoeat/internal/catalog"
	"github.com/chrisdamba/whattoeat/internal/models"
)

func TestClientRecommend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.RecommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Cuisine != "thai" || !req.CurrentWeather || req.Lat == 0 {
			t.Errorf("request = %+v", req)
		}
		_, _ = w.Write([]byte(`{"funFact":"Thai food balances four flavours.","weather":{"temperature":31,"condition":"Sunny"},
			"recommendedDishes":[{"dish":"Som Tam","nutrition":["Low fat"],"suggestedRestaurants":["Jai Thai"]}]}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL, nil).Recommend(context.Background(), models.RecommendationRequest{
		Cuisine: "thai", Lat: 1.3, Lng: 103.8, CurrentWeather: true,
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if rec.Fallback || rec.Weather == nil || rec.Weather.Condition != "Sunny" || len(rec.RecommendedDishes) != 1 {
		t.Errorf("Recommend() = %+v", rec)
	}
}

func TestClientErrors(t *testing.T) {
	if _, err := NewClient("", nil).Recommend(context.Background(), models.RecommendationRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("empty url error = %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	if _, err := NewClient(srv.URL, nil).Recommend(context.Background(), models.RecommendationRequest{}); !errors.Is(err, ErrUpstream) {
		t.Errorf("502 error = %v", err)
	}
}

type stubRecommender struct {
	rec   *models.Recommendation
	err   error
	delay time.Duration
}

func (s stubRecommender) Recommend(ctx context.Context, _ models.RecommendationRequest) (*models.Recommendation, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.rec, s.err
}

func TestWithFallback(t *testing.T) {
	cat := catalog.Default()
	req := models.RecommendationRequest{Cuisine: "Japanese"}

	tests := []struct {
		name         string
		next         Recommender
		wantFallback bool
	}{
		{"no upstream", nil, true},
		{"upstream error", stubRecommender{err: ErrUpstream}, true},
		{"not configured", NewClient("", nil), true},
		{"timeout", stubRecommender{rec: &models.Recommendation{FunFact: "late"}, delay: time.Second}, true},
		{"success", stubRecommender{rec: &models.Recommendation{FunFact: "fresh"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWithFallback(tt.next, cat, 30*time.Millisecond)
			rec, err := w.Recommend(context.Background(), req)
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if rec.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %v, want %v", rec.Fallback, tt.wantFallback)
			}
			if rec.FunFact == "" || len(rec.RecommendedDishes) == 0 {
				t.Errorf("incomplete recommendation %+v", rec)
			}
		})
	}
}
