// Package stoplist holds the operator's editable stop list as immutable snapshots.
//
// Every edit returns a new Form and leaves the receiver untouched, so a
// snapshot handed to an in-flight submission never changes underneath it.
package stoplist

import (
	"fmt"

	"eco-route-service/internal/domain"
)

const (
	DefaultCurrentFuel   = "40.0"
	DefaultTime          = "80.0"
	DefaultVehicleNumber = "BUS-001"

	minStops = 2
)

// Form is the stop list plus the auxiliary trip fields submitted with it.
type Form struct {
	stops         []domain.Stop
	maintainOrder bool
	currentFuel   string
	time          string
	vehicleNumber string
}

// New returns an empty Start/End pair with default trip fields.
func New() Form {
	return Form{
		stops:         []domain.Stop{{}, {}},
		currentFuel:   DefaultCurrentFuel,
		time:          DefaultTime,
		vehicleNumber: DefaultVehicleNumber,
	}
}

// Stops returns a copy of the stop list.
func (f Form) Stops() []domain.Stop { return domain.CloneStops(f.stops) }

func (f Form) Len() int { return len(f.stops) }

// Stop returns a copy of the stop at index i.
func (f Form) Stop(i int) (domain.Stop, bool) {
	if i < 0 || i >= len(f.stops) {
		return domain.Stop{}, false
	}
	return f.stops[i].Clone(), true
}

func (f Form) MaintainOrder() bool   { return f.maintainOrder }
func (f Form) CurrentFuel() string   { return f.currentFuel }
func (f Form) Time() string          { return f.time }
func (f Form) VehicleNumber() string { return f.vehicleNumber }

// Start returns the coordinates of the Start stop, nil while unresolved.
func (f Form) Start() *domain.Coordinate { return f.coordsAt(0) }

// End returns the coordinates of the End stop, nil while unresolved.
func (f Form) End() *domain.Coordinate { return f.coordsAt(len(f.stops) - 1) }

func (f Form) coordsAt(i int) *domain.Coordinate {
	if i < 0 || i >= len(f.stops) || f.stops[i].Coords == nil {
		return nil
	}
	c := *f.stops[i].Coords
	return &c
}

// Unresolved lists the indices of stops without coordinates.
func (f Form) Unresolved() []int {
	var out []int
	for i, s := range f.stops {
		if !s.Resolved() {
			out = append(out, i)
		}
	}
	return out
}

// Request builds the submission payload from this snapshot.
func (f Form) Request() domain.RouteRequest {
	return domain.RouteRequest{
		Stops:         f.Stops(),
		MaintainOrder: f.maintainOrder,
		VehicleNumber: f.vehicleNumber,
		Time:          f.time,
		CurrentFuel:   f.currentFuel,
	}
}

// clone copies the form so the caller may mutate the copy freely.
func (f Form) clone() Form {
	out := f
	out.stops = domain.CloneStops(f.stops)
	return out
}

// InsertStop adds an unresolved stop immediately before the End stop.
func (f Form) InsertStop() Form {
	out := f.clone()
	last := len(out.stops) - 1
	out.stops = append(out.stops[:last:last], domain.Stop{}, out.stops[last])
	return out
}

// RemoveStop deletes an intermediate stop. Start, End and lists of two stops
// are protected.
func (f Form) RemoveStop(i int) (Form, error) {
	n := len(f.stops)
	switch {
	case n <= minStops:
		return f, fmt.Errorf("remove stop %d: %w: list must keep at least %d stops", i, domain.ErrInvariantViolation, minStops)
	case i == 0 || i == n-1:
		return f, fmt.Errorf("remove stop %d: %w: start and end stops are pinned", i, domain.ErrInvariantViolation)
	case i < 0 || i >= n:
		return f, fmt.Errorf("remove stop %d: %w: index out of range [0,%d)", i, domain.ErrInvariantViolation, n)
	}

	out := f.clone()
	out.stops = append(out.stops[:i], out.stops[i+1:]...)
	return out, nil
}

// SetStopLocationText replaces the location text and drops any previous
// geocode result for that stop.
func (f Form) SetStopLocationText(i int, text string) (Form, error) {
	if err := f.checkIndex("set stop location", i); err != nil {
		return f, err
	}

	out := f.clone()
	out.stops[i] = domain.Stop{Location: text}
	return out, nil
}

// SetStopCoords resolves a stop from a geocoding result, taking both the
// coordinates and the place's formatted address.
func (f Form) SetStopCoords(i int, place domain.Place) (Form, error) {
	if err := f.checkIndex("set stop coords", i); err != nil {
		return f, err
	}
	if !place.Location.Valid() {
		return f, fmt.Errorf("set stop coords %d: %w: coordinate %s out of range", i, domain.ErrValidation, place.Location)
	}

	c := place.Location
	out := f.clone()
	out.stops[i] = domain.Stop{Location: place.FormattedAddress, Coords: &c}
	return out, nil
}

// LoadPreset replaces the whole form with a known-good template.
func (f Form) LoadPreset(t Template) Form {
	return Form{
		stops:         domain.CloneStops(t.Stops),
		maintainOrder: t.MaintainOrder,
		currentFuel:   t.CurrentFuel,
		time:          t.Time,
		vehicleNumber: t.VehicleNumber,
	}
}

func (f Form) WithMaintainOrder(v bool) Form {
	out := f.clone()
	out.maintainOrder = v
	return out
}

func (f Form) WithCurrentFuel(v string) Form {
	out := f.clone()
	out.currentFuel = v
	return out
}

func (f Form) WithTime(v string) Form {
	out := f.clone()
	out.time = v
	return out
}

func (f Form) WithVehicleNumber(v string) Form {
	out := f.clone()
	out.vehicleNumber = v
	return out
}

// WithOptimizedStops adopts the stop order returned by a validated optimization.
func (f Form) WithOptimizedStops(stops []domain.Stop) (Form, error) {
	if len(stops) < minStops {
		return f, fmt.Errorf("apply optimized stops: %w: got %d stops", domain.ErrInvariantViolation, len(stops))
	}

	out := f.clone()
	out.stops = domain.CloneStops(stops)
	return out, nil
}

func (f Form) checkIndex(op string, i int) error {
	if i < 0 || i >= len(f.stops) {
		return fmt.Errorf("%s %d: %w: index out of range [0,%d)", op, i, domain.ErrInvariantViolation, len(f.stops))
	}
	return nil
}
