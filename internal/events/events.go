// Package events publishes what the wheel does (spins, restaurant searches)
// to a pluggable destination: stdout, partitioned JSON files or Kafka.
package events

import (
	"encoding/json"
	"time"

	"github.com/chrisdamba/whattoeat/internal/models"
)

type BaseEvent struct {
	Timestamp int64  `json:"timestamp"`
	EventType string `json:"eventType"`
	SessionID string `json:"sessionId"`
}

type SpinEvent struct {
	BaseEvent
	SpinID          string  `json:"spinId"`
	Category        string  `json:"category"`
	SectionIndex    int     `json:"sectionIndex"`
	ItemID          string  `json:"itemId"`
	ItemName        string  `json:"itemName"`
	Rotation        float64 `json:"rotation"`
	Weighted        bool    `json:"weighted"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	LocationDefault bool    `json:"locationDefault"`
}

type SearchEvent struct {
	BaseEvent
	Cuisine         string  `json:"cuisine"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	RestaurantCount int     `json:"restaurantCount"`
	Sample          bool    `json:"sample"`
	DurationMs      int64   `json:"durationMs"`
}

func NewSpinEvent(r *models.SpinRecord) SpinEvent {
	return SpinEvent{
		BaseEvent: BaseEvent{
			Timestamp: r.CreatedAt.Unix(),
			EventType: models.EventSpinCompleted,
			SessionID: r.SessionID,
		},
		SpinID:          r.ID,
		Category:        string(r.Category),
		SectionIndex:    r.SectionIndex,
		ItemID:          r.ItemID,
		ItemName:        r.ItemName,
		Rotation:        r.Rotation,
		Weighted:        r.Weighted,
		Latitude:        r.Location.Lat,
		Longitude:       r.Location.Lng,
		LocationDefault: r.LocationDefault,
	}
}

// NewSearchEvent describes a finished restaurant search. Sample searches
// are reported as fallbacks.
func NewSearchEvent(sessionID, cuisine string, loc models.Location, count int, sample bool, took time.Duration, at time.Time) SearchEvent {
	eventType := models.EventRestaurantsFound
	if sample {
		eventType = models.EventRestaurantFallback
	}
	return SearchEvent{
		BaseEvent: BaseEvent{
			Timestamp: at.Unix(),
			EventType: eventType,
			SessionID: sessionID,
		},
		Cuisine:         cuisine,
		Latitude:        loc.Lat,
		Longitude:       loc.Lng,
		RestaurantCount: count,
		Sample:          sample,
		DurationMs:      took.Milliseconds(),
	}
}

func Encode(topic string, event any) (models.EventMessage, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return models.EventMessage{}, err
	}
	return models.EventMessage{Topic: topic, Message: data}, nil
}
