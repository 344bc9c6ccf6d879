package models

import "time"

// SpinState belongs to one session. CumulativeRotation only ever grows so
// the client can keep animating from where the last spin stopped.
type SpinState struct {
	CumulativeRotation float64   `json:"cumulativeRotation"`
	IsSpinning         bool      `json:"isSpinning"`
	RevealAt           time.Time `json:"revealAt,omitempty"`
	Spins              int       `json:"spins"`
}

type SpinRecord struct {
	ID              string       `json:"id"`
	SessionID       string       `json:"session_id"`
	Category        FoodCategory `json:"category"`
	SectionIndex    int          `json:"section_index"`
	ItemID          string       `json:"item_id"`
	ItemName        string       `json:"item_name"`
	Rotation        float64      `json:"rotation"`
	Weighted        bool         `json:"weighted"`
	Location        Location     `json:"location"`
	LocationDefault bool         `json:"location_default"`
	RestaurantCount int          `json:"restaurant_count"`
	Fallback        bool         `json:"fallback"`
	CreatedAt       time.Time    `json:"created_at"`
}

type EventMessage struct {
	Topic   string
	Message []byte
}
