package geo

import (
	"math"

	"nyc-apartments/models"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points on
// Earth in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180.0
	phi2 := lat2 * math.Pi / 180.0
	dPhi := (lat2 - lat1) * math.Pi / 180.0
	dLambda := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dPhi/2.0)*math.Sin(dPhi/2.0) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2.0)*math.Sin(dLambda/2.0)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance returns the distance in kilometers between two locations.
func Distance(a, b models.Location) float64 {
	return HaversineKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// WithinRadius reports whether point lies within radiusKm of center. The
// boundary is inclusive.
func WithinRadius(center, point models.Location, radiusKm float64) bool {
	return Distance(center, point) <= radiusKm
}

// ValidCoords reports whether a coordinate pair is inside the decimal
// degree range of real places.
func ValidCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
