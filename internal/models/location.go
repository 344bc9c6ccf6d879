package models

import (
	"fmt"
	"math"
)

const earthRadiusKm = 6371.0

type Location struct {
	Lat float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lng float64 `json:"lng" parquet:"name=lng,type=DOUBLE"`
}

func (l Location) Valid() bool {
	return l.Lat >= -90 && l.Lat <= 90 && l.Lng >= -180 && l.Lng <= 180 &&
		!math.IsNaN(l.Lat) && !math.IsNaN(l.Lng)
}

// DistanceKm is the haversine distance between l and other.
func (l Location) DistanceKm(other Location) float64 {
	dLat := (other.Lat - l.Lat) * math.Pi / 180
	dLng := (other.Lng - l.Lng) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(l.Lat*math.Pi/180)*math.Cos(other.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// FormatDistance renders km the way the result cards show it: metres below
// one kilometre, one decimal above.
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1fkm", km)
}
