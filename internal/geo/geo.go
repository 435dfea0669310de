// Package geo holds great-circle helpers for the in-memory catalogue.
package geo

import "math"

// earthRadiusM is the mean Earth radius (IUGG).
const earthRadiusM = 6371008.8

// HaversineMeters returns the great-circle distance in meters between two
// WGS84 points given in degrees. It differs from PostGIS geography distance
// (spheroidal) by well under one percent.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	φ1 := lat1 * math.Pi / 180
	φ2 := lat2 * math.Pi / 180
	dφ := (lat2 - lat1) * math.Pi / 180
	dλ := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dφ/2)*math.Sin(dφ/2) + math.Cos(φ1)*math.Cos(φ2)*math.Sin(dλ/2)*math.Sin(dλ/2)
	return earthRadiusM * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
