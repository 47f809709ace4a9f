package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinate (latitude, longitude) in decimal degrees.
type Coordinate struct {
	Lat float64
	Lng float64
}

// Valid reports whether the coordinate lies within lat [-90,90] and lng [-180,180].
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Point returns the coordinate as an orb.Point, which is [lng, lat].
func (c Coordinate) Point() orb.Point { return orb.Point{c.Lng, c.Lat} }

// Return coordinates as [lat, lng] for the optimizer wire format.
func (c Coordinate) LatLng() [2]float64 { return [2]float64{c.Lat, c.Lng} }

func (c Coordinate) String() string { return fmt.Sprintf("(%.6f,%.6f)", c.Lat, c.Lng) }

// FromPoint converts an orb.Point back into a Coordinate.
func FromPoint(p orb.Point) Coordinate { return Coordinate{Lat: p.Lat(), Lng: p.Lon()} }

// LineString converts a route polyline to an orb.LineString.
func LineString(points []Coordinate) orb.LineString {
	ls := make(orb.LineString, 0, len(points))
	for _, p := range points {
		ls = append(ls, p.Point())
	}
	return ls
}
