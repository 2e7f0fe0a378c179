// Package geodist computes great-circle distances between WGS84
// coordinates via the haversine formula.
package geodist

import "math"

const earthRadiusKM = 6371.0

// Kilometers returns the great-circle distance between two points.
// Inputs must be valid latitudes [-90,90] and longitudes [-180,180];
// values outside that range are the caller's problem.
func Kilometers(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
