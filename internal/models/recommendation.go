package models

type RecommendationRequest struct {
	Cuisine        string  `json:"cuisine"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	CurrentWeather bool    `json:"current_weather"`
}

type Weather struct {
	Temperature float64 `json:"temperature,omitempty"`
	Condition   string  `json:"condition,omitempty"`
	Description string  `json:"description,omitempty"`
}

type Recommendation struct {
	Weather           *Weather          `json:"weather,omitempty"`
	FunFact           string            `json:"funFact"`
	RecommendedDishes []RecommendedDish `json:"recommendedDishes,omitempty"`
	Fallback          bool              `json:"fallback,omitempty"`
}
