// Package geo provides great-circle distance and unit-conversion primitives.
//
// Distances use the haversine formula on a spherical Earth with the mean
// radius of 6371 km.
package geo

import (
	"math"

	"eco-route-service/internal/domain"
)

const (
	// EarthRadiusKm is the mean radius of the Earth in kilometers.
	EarthRadiusKm = 6371.0

	MilesPerKm = 0.621371
	LbsPerKg   = 2.20462
	// TreesPerKg is the number of tree-years needed to absorb one kg of CO2.
	TreesPerKg = 0.0834
)

// HaversineKm returns the great-circle distance between a and b in kilometers.
func HaversineKm(a, b domain.Coordinate) float64 {
	lat1 := degToRad(a.Lat)
	lat2 := degToRad(b.Lat)
	dLat := lat2 - lat1
	dLng := degToRad(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// PathKm sums the haversine distance between consecutive points.
// Fewer than two points yield 0.
func PathKm(points []domain.Coordinate) float64 {
	total := 0.0
	for i := 0; i+1 < len(points); i++ {
		total += HaversineKm(points[i], points[i+1])
	}
	return total
}

func KmToMiles(km float64) float64 { return km * MilesPerKm }

func MilesToKm(miles float64) float64 { return miles / MilesPerKm }

func KgToLbs(kg float64) float64 { return kg * LbsPerKg }

func LbsToKg(lbs float64) float64 { return lbs / LbsPerKg }

func KgToTrees(kg float64) float64 { return kg * TreesPerKg }

func TreesToKg(trees float64) float64 { return trees / TreesPerKg }

// Round1 rounds to one decimal place.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }

func degToRad(d float64) float64 { return d * math.Pi / 180 }
