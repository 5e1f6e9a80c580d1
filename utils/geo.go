package utils

import "math"

const earthRadiusMeters = 6_371_000

// DistanceInMeters returns the great-circle distance between two
// coordinate pairs (in degrees) using the haversine formula.
func DistanceInMeters(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := toRadians(lat1)
	phi2 := toRadians(lat2)
	deltaPhi := toRadians(lat2 - lat1)
	deltaLambda := toRadians(lon2 - lon1)

	sinDeltaPhi := math.Sin(deltaPhi / 2)
	sinDeltaLambda := math.Sin(deltaLambda / 2)

	a := sinDeltaPhi*sinDeltaPhi + math.Cos(phi1)*math.Cos(phi2)*sinDeltaLambda*sinDeltaLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
