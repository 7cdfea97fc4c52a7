// Package geo computes great-circle distances between coordinates.
package geo

import (
	"math"

	"github.com/focusshield/focusshield/internal/domain"
)

// earthRadiusMeters is the mean Earth radius used by the Haversine formula.
const earthRadiusMeters = 6371000

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Haversine returns the great-circle distance in meters between two
// coordinate pairs given in decimal degrees. The result is non-negative and
// symmetric in its arguments.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Distance is Haversine over GeoLocation values.
func Distance(a, b domain.GeoLocation) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}
