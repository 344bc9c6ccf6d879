package models

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	TopicWheelSpins         = "wheel_spins"
	TopicRestaurantSearches = "restaurant_searches"

	EventSpinCompleted      = "SpinCompleted"
	EventRestaurantsFound   = "RestaurantsFound"
	EventRestaurantFallback = "RestaurantFallback"

	RestaurantStatusOpen   = "open"
	RestaurantStatusClosed = "closed"

	// WeightsKeyPrefix namespaces the stored spin weights, one key per session.
	WeightsKeyPrefix = "foodWheelWeights"

	MinWeight = 1
	MaxWeight = 5
)

// DefaultLocation is used whenever the client cannot or will not share one.
var DefaultLocation = Location{
	Lat: 1.3063898620138694,
	Lng: 103.79264781612267,
}
