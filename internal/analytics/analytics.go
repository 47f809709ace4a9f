// Package analytics derives distance, time, emissions and cost metrics from a
// driven route and the form that produced it. Every function is pure.
package analytics

import (
	"fmt"
	"math"

	"eco-route-service/internal/domain"
	"eco-route-service/internal/geo"
)

const (
	// OptimizationFactor is the assumed uniform routing gain applied to the
	// driven distance in the absence of a baseline route from the optimizer.
	OptimizationFactor = 0.85
	// EmissionsKgPerKm is the CO2 emission factor of the vehicle.
	EmissionsKgPerKm = 0.12
	// CostPerKm is the operating cost in dollars per kilometer.
	CostPerKm = 0.15

	DefaultOriginalTime = "6h 30m"
	// PlaceholderOptimizedTime stands in until the optimizer reports durations.
	PlaceholderOptimizedTime = "5h 23m"
)

// Snapshot holds the metrics derived from one successful optimization.
type Snapshot struct {
	OriginalDistanceKm   int
	OptimizedDistanceKm  int
	DistanceSavedKm      int
	DistanceSavedPercent float64
	TotalEmissionsKg     float64
	EmissionsSavedKg     float64
	OriginalCost         float64
	OptimizedCost        float64
	CostSaved            float64
	OriginalTime         string
	OptimizedTime        string
}

// RouteDistanceKm returns the haversine length of the polyline rounded to whole kilometers.
func RouteDistanceKm(points []domain.Coordinate) int {
	return int(math.Round(geo.PathKm(points)))
}

func OptimizedDistanceKm(originalKm int) int {
	return int(math.Round(float64(originalKm) * OptimizationFactor))
}

// DistanceSavedPercent is 0 when the original distance is 0.
func DistanceSavedPercent(originalKm, optimizedKm int) float64 {
	if originalKm == 0 {
		return 0
	}
	return float64(originalKm-optimizedKm) / float64(originalKm) * 100
}

func EmissionsKg(distanceKm float64) float64 {
	return geo.Round1(distanceKm * EmissionsKgPerKm)
}

func CostOf(distanceKm float64) float64 {
	return distanceKm * CostPerKm
}

// FormatPercent renders a percentage with one decimal, e.g. "15.0".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f", p)
}

// Compute derives a Snapshot from the driven geometry and the form's trip time label.
func Compute(geometry []domain.Coordinate, timeLabel string) Snapshot {
	original := RouteDistanceKm(geometry)
	optimized := OptimizedDistanceKm(original)
	saved := original - optimized

	originalTime := timeLabel
	if originalTime == "" {
		originalTime = DefaultOriginalTime
	}

	originalCost := CostOf(float64(original))
	optimizedCost := CostOf(float64(optimized))

	return Snapshot{
		OriginalDistanceKm:   original,
		OptimizedDistanceKm:  optimized,
		DistanceSavedKm:      saved,
		DistanceSavedPercent: DistanceSavedPercent(original, optimized),
		TotalEmissionsKg:     EmissionsKg(float64(optimized)),
		EmissionsSavedKg:     EmissionsKg(float64(saved)),
		OriginalCost:         originalCost,
		OptimizedCost:        optimizedCost,
		CostSaved:            originalCost - optimizedCost,
		OriginalTime:         originalTime,
		OptimizedTime:        PlaceholderOptimizedTime,
	}
}

// TimelinePoint is one sample of the emissions chart.
type TimelinePoint struct {
	Hour        int     `json:"hour"`
	EmissionsKg float64 `json:"emissionsKg"`
	DistanceKm  int     `json:"distanceKm"`
}

// EmissionsTimeline spreads the optimized route over six hourly samples,
// modulating emissions with a slow sine so the chart is not flat.
func EmissionsTimeline(s Snapshot) []TimelinePoint {
	const samples = 6
	out := make([]TimelinePoint, samples)
	for i := range out {
		e := s.TotalEmissionsKg / samples * (1 + math.Sin(float64(i)/2)*0.3)
		out[i] = TimelinePoint{
			Hour:        i,
			EmissionsKg: geo.Round1(e),
			DistanceKm:  int(math.Round(float64(s.OptimizedDistanceKm) / samples * float64(i+1))),
		}
	}
	return out
}
