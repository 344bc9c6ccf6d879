package models

// OpeningHours is what the places provider reports. OpenNow, when set,
// wins over anything parsed from WeekdayText.
type OpeningHours struct {
	OpenNow     *bool    `json:"open_now,omitempty"`
	WeekdayText []string `json:"weekday_text,omitempty"`
}

type Restaurant struct {
	ID           string        `json:"id"`
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Address      string        `json:"address"`
	ImageURL     string        `json:"image_url,omitempty"`
	Rating       float64       `json:"rating"`
	PriceLevel   int           `json:"price_level,omitempty"`
	PriceRange   string        `json:"price_range,omitempty"`
	Cuisine      string        `json:"cuisine"`
	Types        []string      `json:"types,omitempty"`
	Location     Location      `json:"location"`
	Phone        string        `json:"phone,omitempty"`
	Website      string        `json:"website,omitempty"`
	MapsURL      string        `json:"maps_url,omitempty"`
	TodayHours   string        `json:"today_hours,omitempty"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
	Status       string        `json:"status"`
	Distance     string        `json:"distance,omitempty"`
	Sample       bool          `json:"sample,omitempty"`
}
