// Package recommend fetches dish recommendations and a fun fact for a
// cuisine, falling back to the catalog's canned content when the upstream
// service is missing, slow or broken.
package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chrisdamba/whattoeat/internal/catalog"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	ErrNotConfigured = errors.New("recommendation service not configured")
	ErrUpstream      = errors.New("recommendation request failed")
)

type Recommender interface {
	Recommend(ctx context.Context, req models.RecommendationRequest) (*models.Recommendation, error)
}

type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{url: url, httpClient: httpClient}
}

func (c *Client) Recommend(ctx context.Context, in models.RecommendationRequest) (*models.Recommendation, error) {
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encoding recommendation request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating recommendation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var rec models.Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUpstream, err)
	}
	return &rec, nil
}

// WithFallback never fails: it bounds the wrapped recommender by timeout and
// answers from the catalog when it errors.
type WithFallback struct {
	next    Recommender
	catalog *catalog.Catalog
	timeout time.Duration
}

func NewWithFallback(next Recommender, c *catalog.Catalog, timeout time.Duration) *WithFallback {
	return &WithFallback{next: next, catalog: c, timeout: timeout}
}

func (w *WithFallback) Recommend(ctx context.Context, req models.RecommendationRequest) (*models.Recommendation, error) {
	category := models.FoodCategory(strings.ToLower(req.Cuisine))
	if w.next == nil {
		return w.catalog.FallbackRecommendation(category), nil
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	rec, err := w.next.Recommend(ctx, req)
	if err != nil {
		if !errors.Is(err, ErrNotConfigured) {
			log.Warn().Err(err).Str("cuisine", req.Cuisine).Msg("Using fallback recommendation")
		}
		return w.catalog.FallbackRecommendation(category), nil
	}
	if rec.FunFact == "" {
		rec.FunFact = w.catalog.FunFact(category)
	}
	if len(rec.RecommendedDishes) == 0 {
		rec.RecommendedDishes = w.catalog.FallbackDishes[category]
	}
	return rec, nil
}
