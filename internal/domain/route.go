package domain

// Place is a resolved geocoding result: a display address and its location.
type Place struct {
	FormattedAddress string
	Location         Coordinate
}

// Represents a single entry in an operator's stop list.
// A Stop is resolved once Coords is set. Editing its location text
// makes it unresolved again.
type Stop struct {
	Location string
	Coords   *Coordinate
}

// Resolved reports whether the stop carries coordinates.
func (s Stop) Resolved() bool { return s.Coords != nil }

// Clone returns a deep copy so snapshots never share coordinate pointers.
func (s Stop) Clone() Stop {
	if s.Coords == nil {
		return Stop{Location: s.Location}
	}
	c := *s.Coords
	return Stop{Location: s.Location, Coords: &c}
}

// Same reports whether two stops carry the same location text and coordinates.
func (s Stop) Same(o Stop) bool {
	if s.Location != o.Location {
		return false
	}
	if s.Coords == nil || o.Coords == nil {
		return s.Coords == nil && o.Coords == nil
	}
	return *s.Coords == *o.Coords
}

// CloneStops deep-copies a stop slice.
func CloneStops(stops []Stop) []Stop {
	out := make([]Stop, len(stops))
	for i, s := range stops {
		out[i] = s.Clone()
	}
	return out
}

// Represents one optimization submission.
// Stops[0] is the Start and Stops[len-1] the End; both are pinned.
// MaintainOrder is passed through to the optimizer untouched.
type RouteRequest struct {
	Stops         []Stop
	MaintainOrder bool
	VehicleNumber string
	Time          string
	CurrentFuel   string
}

// Represents the optimizer output for a RouteRequest.
// OptimizedStops is a permutation of the submitted stops. RouteGeometry is the
// polyline actually driven and includes intermediate road-network points.
type RouteResponse struct {
	OptimizedStops []Stop
	RouteGeometry  []Coordinate
}
