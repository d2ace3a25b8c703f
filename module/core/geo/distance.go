// Package geo provides the great-circle distance used by geofence
// evaluation and history analytics.
package geo

import (
	"math"

	"github.com/markbriannn/vehicle-tracking-ap-sub000/module/core/domain"
)

const EarthRadiusMeters = 6371000

// DistanceMeters returns the haversine distance between two coordinates.
func DistanceMeters(a, b domain.Coordinate) float64 {
	return haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return EarthRadiusMeters * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
