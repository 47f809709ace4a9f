// Package viewport computes the map region that frames a route.
package viewport

import (
	"math"

	"eco-route-service/internal/domain"

	"github.com/paulmach/orb"
)

const (
	// PaddingRatio expands each side of the bounds by this share of its span.
	PaddingRatio = 0.1
	// MinPaddingDeg keeps single-point and very short routes from zooming to street level.
	MinPaddingDeg = 0.005
	// PaddingPx is the screen padding the renderer applies when fitting.
	PaddingPx = 50
)

// FitBounds is a renderer-independent "fit the map to these bounds" instruction.
type FitBounds struct {
	Bounds    orb.Bound
	PaddingPx [2]int
}

func (f FitBounds) SouthWest() domain.Coordinate { return domain.FromPoint(f.Bounds.Min) }

func (f FitBounds) NorthEast() domain.Coordinate { return domain.FromPoint(f.Bounds.Max) }

// Contains reports whether c lies inside the padded bounds.
func (f FitBounds) Contains(c domain.Coordinate) bool { return f.Bounds.Contains(c.Point()) }

// Fit frames the route polyline when it is non-empty, otherwise the start and
// end stops when both are known. It reports false when there is nothing to frame.
func Fit(route []domain.Coordinate, start, end *domain.Coordinate) (FitBounds, bool) {
	var points []domain.Coordinate
	switch {
	case len(route) > 0:
		points = route
	case start != nil && end != nil:
		points = []domain.Coordinate{*start, *end}
	default:
		return FitBounds{}, false
	}

	b := orb.Bound{Min: points[0].Point(), Max: points[0].Point()}
	for _, p := range points[1:] {
		b = b.Extend(p.Point())
	}

	return FitBounds{
		Bounds:    pad(b),
		PaddingPx: [2]int{PaddingPx, PaddingPx},
	}, true
}

func pad(b orb.Bound) orb.Bound {
	padLng := math.Max((b.Max.Lon()-b.Min.Lon())*PaddingRatio, MinPaddingDeg)
	padLat := math.Max((b.Max.Lat()-b.Min.Lat())*PaddingRatio, MinPaddingDeg)

	return orb.Bound{
		Min: orb.Point{math.Max(b.Min.Lon()-padLng, -180), math.Max(b.Min.Lat()-padLat, -90)},
		Max: orb.Point{math.Min(b.Max.Lon()+padLng, 180), math.Min(b.Max.Lat()+padLat, 90)},
	}
}
