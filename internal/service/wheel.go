// Package service coordinates a spin end to end: the wheel draw, the
// restaurant search and recommendation that follow it, and the per-session
// state that keeps spins ordered.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chrisdamba/whattoeat/internal/catalog"
	"github.com/chrisdamba/whattoeat/internal/events"
	"github.com/chrisdamba/whattoeat/internal/factories"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/chrisdamba/whattoeat/internal/places"
	"github.com/chrisdamba/whattoeat/internal/recommend"
	"github.com/chrisdamba/whattoeat/internal/repositories"
	"github.com/chrisdamba/whattoeat/internal/repositories/memory"
	"github.com/chrisdamba/whattoeat/internal/wheel"
	"github.com/google/uuid"
	"github.com/lucsky/cuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSpinInProgress  = errors.New("previous spin is still animating")
)

const (
	NoticeDefaultLocation = "Location unavailable, showing sample restaurants near the default location."
	NoticePlacesFailed    = "Couldn't reach the restaurant search, showing sample restaurants instead."
	NoticeNoRestaurants   = "No restaurants found nearby."
)

type Deps struct {
	Config      *models.Config
	Catalog     *catalog.Catalog
	Spinner     *wheel.Spinner
	Places      places.Searcher
	Recommender recommend.Recommender
	Samples     *factories.RestaurantFactory
	Preferences repositories.PreferenceRepository
	Spins       repositories.SpinRepository
	Publisher   *events.Publisher
	Now         func() time.Time
}

type SpinRequest struct {
	Location *models.Location
}

type SearchRequest struct {
	Cuisine   string
	Location  *models.Location
	PageToken string
}

type SearchResult struct {
	Restaurants     []models.Restaurant `json:"restaurants"`
	NextPageToken   string              `json:"nextPageToken,omitempty"`
	Location        models.Location     `json:"location"`
	LocationDefault bool                `json:"locationDefault"`
	Sample          bool                `json:"sample"`
	Superseded      bool                `json:"superseded"`
	Notices         []string            `json:"notices,omitempty"`
}

type SpinResult struct {
	SpinID         string                 `json:"spinId"`
	SessionID      string                 `json:"sessionId"`
	SectionIndex   int                    `json:"sectionIndex"`
	Category       models.FoodCategory    `json:"category"`
	Label          string                 `json:"label"`
	Item           models.FoodItem        `json:"item"`
	Rotation       float64                `json:"rotation"`
	Delta          float64                `json:"delta"`
	Weighted       bool                   `json:"weighted"`
	RevealAt       time.Time              `json:"revealAt"`
	Recommendation *models.Recommendation `json:"recommendation,omitempty"`
	SearchResult
}

type session struct {
	mu         sync.Mutex
	id         string
	state      models.SpinState
	generation uint64
	cancel     context.CancelFunc
	lastUsed   atomic.Int64 // unix nanos
}

type WheelService struct {
	Deps
	sessions map[string]*session
	mu       sync.RWMutex
}

func New(deps Deps) *WheelService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Recommender == nil {
		deps.Recommender = recommend.NewWithFallback(nil, deps.Catalog, 0)
	}
	if deps.Preferences == nil {
		deps.Preferences = memory.NewPreferenceStore()
	}
	return &WheelService{
		Deps:     deps,
		sessions: make(map[string]*session),
	}
}

func (s *WheelService) Sections() []models.WheelSection {
	return s.Catalog.Sections
}

// CreateSession starts a wheel at 0 degrees.
func (s *WheelService) CreateSession() (string, models.SpinState) {
	id := uuid.NewString()
	now := s.Now()
	sess := &session{id: id}
	sess.lastUsed.Store(now.UnixNano())
	s.mu.Lock()
	s.evictIdle(now)
	s.sessions[id] = sess
	s.mu.Unlock()
	log.Debug().Str("session", id).Msg("Session created")
	return id, models.SpinState{}
}

func (s *WheelService) session(id string) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	sess.lastUsed.Store(s.Now().UnixNano())
	return sess, nil
}

// evictIdle drops sessions untouched for longer than SessionTTL and cancels
// their in-flight searches. Callers hold s.mu.
func (s *WheelService) evictIdle(now time.Time) {
	ttl := s.Config.SessionTTL
	if ttl <= 0 {
		return
	}
	cutoff := now.Add(-ttl).UnixNano()
	for id, sess := range s.sessions {
		if sess.lastUsed.Load() >= cutoff {
			continue
		}
		sess.mu.Lock()
		if sess.cancel != nil {
			sess.cancel()
		}
		sess.mu.Unlock()
		delete(s.sessions, id)
		log.Debug().Str("session", id).Msg("Session expired")
	}
}

// State reports the session's wheel; IsSpinning holds until the reveal time.
func (s *WheelService) State(id string) (models.SpinState, error) {
	sess, err := s.session(id)
	if err != nil {
		return models.SpinState{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	st := sess.state
	st.IsSpinning = s.Now().Before(st.RevealAt)
	return st, nil
}

// Spin draws a section and dish, then looks up restaurants and a
// recommendation for it in parallel. A newer spin or search on the same
// session cancels this one's search and marks the result superseded.
func (s *WheelService) Spin(ctx context.Context, sessionID string, req SpinRequest) (*SpinResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	weights := s.loadWeights(ctx, sessionID)
	sections := s.Catalog.Sections

	sess.mu.Lock()
	now := s.Now()
	if now.Before(sess.state.RevealAt) {
		sess.mu.Unlock()
		return nil, ErrSpinInProgress
	}
	out, err := s.Spinner.Spin(sess.state.CumulativeRotation, sections, weights)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	sess.state.CumulativeRotation = out.Rotation
	sess.state.RevealAt = now.Add(s.Config.AnimationDuration)
	sess.state.Spins++
	revealAt := sess.state.RevealAt
	searchCtx, gen := s.supersede(ctx, sess)
	sess.mu.Unlock()

	section := sections[out.Index]
	result := &SpinResult{
		SpinID:       cuid.New(),
		SessionID:    sessionID,
		SectionIndex: out.Index,
		Category:     section.Category,
		Label:        section.Label,
		Item:         out.Item,
		Rotation:     out.Rotation,
		Delta:        out.Delta,
		Weighted:     out.Weighted,
		RevealAt:     revealAt,
	}
	log.Info().
		Str("session", sessionID).
		Str("category", string(section.Category)).
		Str("item", out.Item.Name).
		Bool("weighted", out.Weighted).
		Msg("Wheel spun")

	loc, locDefault := s.resolveLocation(req.Location)
	g, gctx := errgroup.WithContext(searchCtx)
	g.Go(func() error {
		result.SearchResult = s.findRestaurants(gctx, sessionID, section.Label, loc, locDefault, "")
		return nil
	})
	g.Go(func() error {
		rec, err := s.Recommender.Recommend(gctx, models.RecommendationRequest{
			Cuisine:        string(section.Category),
			Lat:            loc.Lat,
			Lng:            loc.Lng,
			CurrentWeather: s.Config.WeatherEnabled,
		})
		if err != nil {
			rec = s.Catalog.FallbackRecommendation(section.Category)
		}
		result.Recommendation = rec
		return nil
	})
	_ = g.Wait()

	result.Superseded = !s.finish(sess, gen)
	if result.Superseded {
		result.Restaurants = nil
		result.NextPageToken = ""
		log.Debug().Str("session", sessionID).Msg("Discarding superseded restaurant search")
	}

	record := &models.SpinRecord{
		ID:              result.SpinID,
		SessionID:       sessionID,
		Category:        section.Category,
		SectionIndex:    out.Index,
		ItemID:          out.Item.ID,
		ItemName:        out.Item.Name,
		Rotation:        out.Rotation,
		Weighted:        out.Weighted,
		Location:        loc,
		LocationDefault: locDefault,
		RestaurantCount: len(result.Restaurants),
		Fallback:        result.Sample || (result.Recommendation != nil && result.Recommendation.Fallback),
		CreatedAt:       now,
	}
	if s.Spins != nil {
		if err := s.Spins.Create(ctx, record); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("Failed to record spin")
		}
	}
	s.Publisher.Publish(models.TopicWheelSpins, events.NewSpinEvent(record))
	return result, nil
}

// SearchRestaurants is a standalone search, typically the next page of a
// spin's results. It supersedes any search the session has in flight.
func (s *WheelService) SearchRestaurants(ctx context.Context, sessionID string, req SearchRequest) (*SearchResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	searchCtx, gen := s.supersede(ctx, sess)
	sess.mu.Unlock()

	loc, locDefault := s.resolveLocation(req.Location)
	result := s.findRestaurants(searchCtx, sessionID, req.Cuisine, loc, locDefault, req.PageToken)
	if !s.finish(sess, gen) {
		return &SearchResult{Location: loc, LocationDefault: locDefault, Superseded: true}, nil
	}
	return &result, nil
}

// supersede cancels the session's in-flight search and starts a new
// generation. Callers hold sess.mu.
func (s *WheelService) supersede(ctx context.Context, sess *session) (context.Context, uint64) {
	if sess.cancel != nil {
		sess.cancel()
	}
	sess.generation++
	searchCtx, cancel := context.WithCancel(ctx)
	sess.cancel = cancel
	return searchCtx, sess.generation
}

// finish reports whether gen is still the session's latest search and, if
// so, releases its context.
func (s *WheelService) finish(sess *session, gen uint64) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.generation != gen {
		return false
	}
	if sess.cancel != nil {
		sess.cancel()
		sess.cancel = nil
	}
	return true
}

func (s *WheelService) resolveLocation(loc *models.Location) (models.Location, bool) {
	if loc == nil || !loc.Valid() || *loc == (models.Location{}) {
		return s.Config.DefaultLocation(), true
	}
	return *loc, false
}

func (s *WheelService) findRestaurants(ctx context.Context, sessionID, cuisine string, loc models.Location, locDefault bool, pageToken string) SearchResult {
	start := s.Now()
	res := SearchResult{Location: loc, LocationDefault: locDefault}

	switch {
	case locDefault:
		res.Notices = append(res.Notices, NoticeDefaultLocation)
		res.Restaurants, res.Sample = s.sampleRestaurants(cuisine, loc), true
	case s.Places == nil:
		res.Restaurants, res.Sample = s.sampleRestaurants(cuisine, loc), true
	default:
		searchCtx, cancel := context.WithTimeout(ctx, s.Config.PlacesTimeout)
		found, err := s.Places.Search(searchCtx, places.Query{Cuisine: cuisine, Location: loc, PageToken: pageToken})
		cancel()
		switch {
		case err != nil && errors.Is(ctx.Err(), context.Canceled):
			return res
		case err != nil:
			log.Warn().Err(err).Str("session", sessionID).Str("cuisine", cuisine).Msg("Restaurant search failed")
			res.Notices = append(res.Notices, NoticePlacesFailed)
			res.Restaurants, res.Sample = s.sampleRestaurants(cuisine, loc), true
		default:
			res.Restaurants, res.NextPageToken = found.Restaurants, found.NextPageToken
			if len(res.Restaurants) == 0 && pageToken == "" {
				res.Notices = append(res.Notices, NoticeNoRestaurants)
			}
		}
	}

	took := s.Now().Sub(start)
	s.Publisher.Publish(models.TopicRestaurantSearches,
		events.NewSearchEvent(sessionID, cuisine, loc, len(res.Restaurants), res.Sample, took, start))
	log.Debug().
		Str("session", sessionID).
		Str("cuisine", cuisine).
		Int("restaurants", len(res.Restaurants)).
		Bool("sample", res.Sample).
		Dur("took", took).
		Msg("Restaurant search finished")
	return res
}

func (s *WheelService) sampleRestaurants(cuisine string, near models.Location) []models.Restaurant {
	if s.Samples == nil || s.Config.SampleRestaurants <= 0 {
		return nil
	}
	rs := s.Samples.CreateRestaurants(s.Config.SampleRestaurants, near, cuisine, s.Config.PlacesRadiusMeters/1000)
	now := s.Now()
	for i := range rs {
		setStatus(&rs[i], now)
	}
	return rs
}

// Recommend proxies the recommendation service; failures fall back to the
// catalog.
func (s *WheelService) Recommend(ctx context.Context, req models.RecommendationRequest) *models.Recommendation {
	rec, err := s.Recommender.Recommend(ctx, req)
	if err != nil {
		return s.Catalog.FallbackRecommendation(models.FoodCategory(req.Cuisine))
	}
	return rec
}

// Weights returns the session's stored weights, or defaults when none are
// stored or what is stored does not fit the catalog.
func (s *WheelService) Weights(ctx context.Context, sessionID string) (models.CategoryWeights, error) {
	if _, err := s.session(sessionID); err != nil {
		return nil, err
	}
	return s.loadWeights(ctx, sessionID), nil
}

func (s *WheelService) SetWeights(ctx context.Context, sessionID string, w models.CategoryWeights) error {
	if _, err := s.session(sessionID); err != nil {
		return err
	}
	if err := w.Validate(s.Catalog.Sections); err != nil {
		return err
	}
	raw, err := json.Marshal(w)
	if err != nil {
		return err
	}
	if err := s.Preferences.Save(ctx, repositories.WeightsKey(sessionID), raw); err != nil {
		return fmt.Errorf("saving weights: %w", err)
	}
	return nil
}

func (s *WheelService) loadWeights(ctx context.Context, sessionID string) models.CategoryWeights {
	defaults := models.DefaultWeights(s.Catalog.Sections)
	raw, ok, err := s.Preferences.Load(ctx, repositories.WeightsKey(sessionID))
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("Failed to load weights")
		return defaults
	}
	if !ok {
		return defaults
	}
	w, err := models.ParseWeights(raw, s.Catalog.Sections)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("Ignoring stored weights")
		return defaults
	}
	return w
}
