// Package places searches for restaurants near a location through the
// Google Places (v1) text search API.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chrisdamba/whattoeat/internal/hours"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	searchTextPath = "/places:searchText"
	photoMaxPx     = 400
)

var fieldMask = strings.Join([]string{
	"places.id",
	"places.displayName",
	"places.formattedAddress",
	"places.location",
	"places.rating",
	"places.types",
	"places.priceLevel",
	"places.photos.name",
	"places.photos.widthPx",
	"places.photos.heightPx",
	"places.currentOpeningHours.openNow",
	"places.currentOpeningHours.weekdayDescriptions",
	"places.nationalPhoneNumber",
	"places.websiteUri",
	"places.googleMapsUri",
	"nextPageToken",
}, ",")

var (
	ErrNoAPIKey = errors.New("places API key not configured")
	ErrUpstream = errors.New("places API request failed")
)

var priceLevels = map[string]int{
	"PRICE_LEVEL_FREE":           0,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

type Query struct {
	Cuisine   string
	Location  models.Location
	PageToken string
}

type Result struct {
	Restaurants   []models.Restaurant `json:"restaurants"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
}

// Searcher is anything that can turn a query into nearby restaurants.
type Searcher interface {
	Search(ctx context.Context, q Query) (Result, error)
}

type Client struct {
	apiKey       string
	baseURL      string
	radiusMeters float64
	maxResults   int
	httpClient   *http.Client
	now          func() time.Time
}

func NewClient(cfg *models.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.PlacesTimeout}
	}
	return &Client{
		apiKey:       cfg.PlacesAPIKey,
		baseURL:      strings.TrimRight(cfg.PlacesBaseURL, "/"),
		radiusMeters: cfg.PlacesRadiusMeters,
		maxResults:   cfg.PlacesMaxResults,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

type searchRequest struct {
	TextQuery      string       `json:"textQuery"`
	LocationBias   locationBias `json:"locationBias"`
	MaxResultCount int          `json:"maxResultCount"`
	LanguageCode   string       `json:"languageCode"`
	PageToken      string       `json:"pageToken,omitempty"`
}

type locationBias struct {
	Circle circle `json:"circle"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type searchResponse struct {
	Places        []place `json:"places"`
	NextPageToken string  `json:"nextPageToken"`
}

type place struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string   `json:"formattedAddress"`
	Location         latLng   `json:"location"`
	Rating           float64  `json:"rating"`
	Types            []string `json:"types"`
	PriceLevel       string   `json:"priceLevel"`
	Photos           []struct {
		Name     string `json:"name"`
		WidthPx  int    `json:"widthPx"`
		HeightPx int    `json:"heightPx"`
	} `json:"photos"`
	CurrentOpeningHours *struct {
		OpenNow             *bool    `json:"openNow"`
		WeekdayDescriptions []string `json:"weekdayDescriptions"`
	} `json:"currentOpeningHours"`
	NationalPhoneNumber string `json:"nationalPhoneNumber"`
	WebsiteURI          string `json:"websiteUri"`
	GoogleMapsURI       string `json:"googleMapsUri"`
}

// Search runs a text search for "<cuisine> restaurant" biased to q.Location.
func (c *Client) Search(ctx context.Context, q Query) (Result, error) {
	if c.apiKey == "" {
		return Result{}, ErrNoAPIKey
	}

	text := "restaurant"
	if cuisine := strings.TrimSpace(q.Cuisine); cuisine != "" {
		text = cuisine + " restaurant"
	}
	body, err := json.Marshal(searchRequest{
		TextQuery: text,
		LocationBias: locationBias{Circle: circle{
			Center: latLng{Latitude: q.Location.Lat, Longitude: q.Location.Lng},
			Radius: c.radiusMeters,
		}},
		MaxResultCount: c.maxResults,
		LanguageCode:   "en",
		PageToken:      q.PageToken,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encoding search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchTextPath, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Result{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return Result{}, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}

	now := c.now()
	out := Result{
		Restaurants:   make([]models.Restaurant, 0, len(sr.Places)),
		NextPageToken: sr.NextPageToken,
	}
	for _, p := range sr.Places {
		out.Restaurants = append(out.Restaurants, c.toRestaurant(p, q.Location, now))
	}
	log.Debug().
		Str("query", text).
		Int("results", len(out.Restaurants)).
		Bool("more", out.NextPageToken != "").
		Msg("Places search complete")
	return out, nil
}

func (c *Client) toRestaurant(p place, from models.Location, now time.Time) models.Restaurant {
	r := models.Restaurant{
		ID:       p.ID,
		PlaceID:  p.ID,
		Name:     p.DisplayName.Text,
		Address:  p.FormattedAddress,
		Rating:   p.Rating,
		Types:    p.Types,
		Location: models.Location{Lat: p.Location.Latitude, Lng: p.Location.Longitude},
		Phone:    p.NationalPhoneNumber,
		Website:  p.WebsiteURI,
		MapsURL:  p.GoogleMapsURI,
		Cuisine:  cuisineFromTypes(p.Types),
	}
	if level, ok := priceLevels[p.PriceLevel]; ok {
		r.PriceLevel = level
		r.PriceRange = strings.Repeat("$", level)
	}
	if len(p.Photos) > 0 {
		r.ImageURL = c.PhotoURL(p.Photos[0].Name)
	}
	if p.CurrentOpeningHours != nil {
		r.OpeningHours = &models.OpeningHours{
			OpenNow:     p.CurrentOpeningHours.OpenNow,
			WeekdayText: p.CurrentOpeningHours.WeekdayDescriptions,
		}
		if line, err := hours.DayLine(r.OpeningHours.WeekdayText, now.Weekday()); err == nil {
			r.TodayHours = line
		}
	}
	r.Status = models.RestaurantStatusClosed
	if hours.IsOpenNow(r.OpeningHours, now) {
		r.Status = models.RestaurantStatusOpen
	}
	if from.Valid() && r.Location != (models.Location{}) {
		r.Distance = models.FormatDistance(from.DistanceKm(r.Location))
	}
	return r
}

// PhotoURL builds the media URL for a photo resource name.
func (c *Client) PhotoURL(name string) string {
	if name == "" {
		return ""
	}
	v := url.Values{}
	v.Set("key", c.apiKey)
	v.Set("maxHeightPx", fmt.Sprint(photoMaxPx))
	v.Set("maxWidthPx", fmt.Sprint(photoMaxPx))
	return c.baseURL + "/" + name + "/media?" + v.Encode()
}

func cuisineFromTypes(types []string) string {
	if len(types) == 0 {
		return "Restaurant"
	}
	return strings.ReplaceAll(types[0], "_", " ")
}
