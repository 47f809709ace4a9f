package services

import (
	"context"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/geo"
	"fmt"
	"log"
	"strconv"
)

// NearestNeighborOrder returns a visiting order over points that starts at
// index 0 and ends at the last index. Intermediate points are chosen greedily
// by haversine distance from the current position.
//
// It does not attempt global optimization. Ties go to the lower index so the
// result is deterministic.
func NearestNeighborOrder(points []domain.Coordinate) []int {
	n := len(points)
	if n <= 3 {
		return identity(n)
	}

	remaining := make(map[int]struct{}, n-2)
	for i := 1; i < n-1; i++ {
		remaining[i] = struct{}{}
	}

	order := make([]int, 0, n)
	order = append(order, 0)
	current := 0

	for len(remaining) > 0 {
		best := -1
		bestKm := 0.0
		for i := range remaining {
			d := geo.HaversineKm(points[current], points[i])
			if best < 0 || d < bestKm || (d == bestKm && i < best) {
				best, bestKm = i, d
			}
		}
		order = append(order, best)
		delete(remaining, best)
		current = best
	}

	return append(order, n-1)
}

// TwoOpt improves an order by reversing segments while that shortens the
// path. The first and last positions never move.
func TwoOpt(points []domain.Coordinate, order []int) []int {
	out := append([]int(nil), order...)
	n := len(out)
	if n < 4 {
		return out
	}

	dist := func(a, b int) float64 { return geo.HaversineKm(points[out[a]], points[out[b]]) }

	for improved := true; improved; {
		improved = false
		for i := 1; i < n-2; i++ {
			for j := i + 1; j < n-1; j++ {
				before := dist(i-1, i) + dist(j, j+1)
				after := dist(i-1, j) + dist(i, j+1)
				if after+1e-9 < before {
					reverse(out[i : j+1])
					improved = true
				}
			}
		}
	}

	return out
}

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// LocalOptimizer implements ports.RouteOptimizer in process. It reorders the
// intermediate stops with nearest neighbour plus 2-opt and returns the
// straight-line polyline through the stops as route geometry.
type LocalOptimizer struct{}

func NewLocalOptimizer() *LocalOptimizer { return &LocalOptimizer{} }

func (l *LocalOptimizer) OptimizeRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error) {
	if err := ValidateRequest(req); err != nil {
		return domain.RouteResponse{}, fmt.Errorf("local optimize: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return domain.RouteResponse{}, fmt.Errorf("local optimize: %w", err)
	}

	points := make([]domain.Coordinate, len(req.Stops))
	for i, s := range req.Stops {
		points[i] = *s.Coords
	}

	order := identity(len(points))
	if !req.MaintainOrder {
		order = TwoOpt(points, NearestNeighborOrder(points))
	}

	stops := make([]domain.Stop, 0, len(order))
	geometry := make([]domain.Coordinate, 0, len(order))
	for _, i := range order {
		stops = append(stops, req.Stops[i].Clone())
		geometry = append(geometry, points[i])
	}

	logSavings(req, points, geometry)

	return domain.RouteResponse{OptimizedStops: stops, RouteGeometry: geometry}, nil
}

func (l *LocalOptimizer) Health(ctx context.Context) error { return nil }

func logSavings(req domain.RouteRequest, original, optimized []domain.Coordinate) {
	before := geo.PathKm(original)
	after := geo.PathKm(optimized)

	msg := fmt.Sprintf("local optimize stops=%d maintain_order=%t original_km=%.2f optimized_km=%.2f",
		len(req.Stops), req.MaintainOrder, before, after)

	// currentFuel is read as fuel economy in mpg when it parses.
	if mpg, err := strconv.ParseFloat(req.CurrentFuel, 64); err == nil && mpg > 0 {
		msg += fmt.Sprintf(" original_gal=%.2f optimized_gal=%.2f",
			geo.KmToMiles(before)/mpg, geo.KmToMiles(after)/mpg)
	}
	log.Print(msg)
}
