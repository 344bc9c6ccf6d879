package places

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
)

const sampleResponse = `{
  "places": [
    {
      "id": "abc123",
      "displayName": {"text": "Ramen Keisuke"},
      "formattedAddress": "1 Tras Link, Singapore",
      "location": {"latitude": 1.3070, "longitude": 103.7930},
      "rating": 4.4,
      "types": ["ramen_restaurant", "restaurant"],
      "priceLevel": "PRICE_LEVEL_MODERATE",
      "photos": [{"name": "places/abc123/photos/p1", "widthPx": 800, "heightPx": 600}],
      "currentOpeningHours": {
        "weekdayDescriptions": [
          "Monday: 11:30 AM – 2:30 PM, 5:30 PM – 10:30 PM",
          "Tuesday: Closed",
          "Wednesday: Closed",
          "Thursday: Closed",
          "Friday: Closed",
          "Saturday: Closed",
          "Sunday: Closed"
        ]
      },
      "googleMapsUri": "https://maps.google.com/?cid=1"
    },
    {
      "id": "def456",
      "displayName": {"text": "Unknown Eats"},
      "location": {"latitude": 1.35, "longitude": 103.80}
    }
  ],
  "nextPageToken": "next-1"
}`

func testConfig(baseURL string) *models.Config {
	return &models.Config{
		PlacesAPIKey:       "test-key",
		PlacesBaseURL:      baseURL,
		PlacesRadiusMeters: 5000,
		PlacesMaxResults:   10,
		PlacesTimeout:      time.Second,
	}
}

func TestSearch(t *testing.T) {
	var gotBody searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != searchTextPath {
			t.Errorf("request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Goog-Api-Key") != "test-key" {
			t.Errorf("api key header = %q", r.Header.Get("X-Goog-Api-Key"))
		}
		if !strings.Contains(r.Header.Get("X-Goog-FieldMask"), "places.currentOpeningHours.weekdayDescriptions") {
			t.Errorf("field mask = %q", r.Header.Get("X-Goog-FieldMask"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), srv.Client())
	c.now = func() time.Time { return time.Date(2024, 1, 1, 19, 0, 0, 0, time.UTC) } // Monday

	res, err := c.Search(context.Background(), Query{Cuisine: "Japanese", Location: models.DefaultLocation, PageToken: "tok"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotBody.TextQuery != "Japanese restaurant" || gotBody.PageToken != "tok" || gotBody.LanguageCode != "en" {
		t.Errorf("request body = %+v", gotBody)
	}
	if gotBody.LocationBias.Circle.Radius != 5000 || gotBody.MaxResultCount != 10 {
		t.Errorf("location bias = %+v, max = %d", gotBody.LocationBias, gotBody.MaxResultCount)
	}
	if res.NextPageToken != "next-1" || len(res.Restaurants) != 2 {
		t.Fatalf("result = %+v", res)
	}

	r := res.Restaurants[0]
	if r.Name != "Ramen Keisuke" || r.Cuisine != "ramen restaurant" || r.PriceRange != "$$" || r.PriceLevel != 2 {
		t.Errorf("converted restaurant = %+v", r)
	}
	if r.Status != models.RestaurantStatusOpen {
		t.Errorf("status = %q, want open at Monday 19:00", r.Status)
	}
	if !strings.HasPrefix(r.TodayHours, "Monday: ") {
		t.Errorf("today hours = %q", r.TodayHours)
	}
	if !strings.Contains(r.ImageURL, "/places/abc123/photos/p1/media?") || !strings.Contains(r.ImageURL, "maxWidthPx=400") {
		t.Errorf("image url = %q", r.ImageURL)
	}
	if !strings.HasSuffix(r.Distance, "m") {
		t.Errorf("distance = %q", r.Distance)
	}

	bare := res.Restaurants[1]
	if bare.Cuisine != "Restaurant" || bare.Status != models.RestaurantStatusClosed || bare.PriceRange != "" || bare.ImageURL != "" {
		t.Errorf("bare restaurant = %+v", bare)
	}
}

func TestSearchWithoutCuisine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body searchRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.TextQuery != "restaurant" {
			t.Errorf("text query = %q", body.TextQuery)
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	res, err := NewClient(testConfig(srv.URL), nil).Search(context.Background(), Query{Location: models.DefaultLocation})
	if err != nil || len(res.Restaurants) != 0 {
		t.Fatalf("Search() = %+v, %v", res, err)
	}
}

func TestSearchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), nil).Search(context.Background(), Query{})
	if !errors.Is(err, ErrUpstream) || !strings.Contains(err.Error(), "429") {
		t.Errorf("Search() error = %v, want ErrUpstream with status", err)
	}

	cfg := testConfig(srv.URL)
	cfg.PlacesAPIKey = ""
	if _, err := NewClient(cfg, nil).Search(context.Background(), Query{}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("Search() without key error = %v, want ErrNoAPIKey", err)
	}
}

func TestSearchHonoursContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := NewClient(testConfig(srv.URL), nil).Search(ctx, Query{}); !errors.Is(err, ErrUpstream) {
		t.Errorf("Search() error = %v, want ErrUpstream on timeout", err)
	}
}

func TestPhotoURL(t *testing.T) {
	c := NewClient(testConfig("https://places.example.com/v1/"), nil)
	if got := c.PhotoURL(""); got != "" {
		t.Errorf("PhotoURL(\"\") = %q", got)
	}
	want := "https://places.example.com/v1/places/x/photos/y/media?key=test-key&maxHeightPx=400&maxWidthPx=400"
	if got := c.PhotoURL("places/x/photos/y"); got != want {
		t.Errorf("PhotoURL() = %q, want %q", got, want)
	}
}
