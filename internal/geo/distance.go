// Package geo holds great-circle distance helpers.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by DistanceKm
const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine great-circle distance in kilometres between two
// points given in signed decimal degrees. Inputs are not validated.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	dPhi := toRadians(lat2 - lat1)
	dLambda := toRadians(lon2 - lon1)

	sinDPhi := math.Sin(dPhi / 2)
	sinDLambda := math.Sin(dLambda / 2)
	a := sinDPhi*sinDPhi + math.Cos(phi1)*math.Cos(phi2)*sinDLambda*sinDLambda
	// rounding can push a past 1 for antipodal points
	a = math.Min(1, math.Max(0, a))

	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ValidCoordinates reports whether lat/lon are finite and inside their ranges
func ValidCoordinates(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
