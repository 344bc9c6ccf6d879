package models

type FoodCategory string

type FoodItem struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Category     FoodCategory `json:"category" yaml:"category"`
	Description  string       `json:"description" yaml:"description"`
	HealthRating int          `json:"healthRating" yaml:"health_rating"` // 1-5
	CulturalInfo string       `json:"culturalInfo,omitempty" yaml:"cultural_info,omitempty"`
	Locations    []string     `json:"locations,omitempty" yaml:"locations,omitempty"`
	Cuisine      string       `json:"cuisine,omitempty" yaml:"cuisine,omitempty"`
	ImageURL     string       `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
}

// WheelSection is one slice of the wheel. Its position in the catalog's
// section list fixes its arc.
type WheelSection struct {
	Category   FoodCategory `json:"category" yaml:"category"`
	Label      string       `json:"label" yaml:"label"`
	ColorToken string       `json:"color" yaml:"color"`
	Items      []FoodItem   `json:"items" yaml:"items"`
}

type RecommendedDish struct {
	Dish                 string   `json:"dish" yaml:"dish"`
	Nutrition            []string `json:"nutrition" yaml:"nutrition"`
	SuggestedRestaurants []string `json:"suggestedRestaurants" yaml:"suggested_restaurants"`
}
