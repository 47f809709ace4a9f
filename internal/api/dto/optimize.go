package dto

import (
	"eco-route-service/internal/domain"
	"encoding/json"
	"fmt"
)

// Wire shapes of the optimizer contract (POST /optimize_route).

type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Stop struct {
	Location string  `json:"location"`
	Coords   *Coords `json:"coords"`
}

// LatLng is one routeGeometry point encoded as [lat, lng].
type LatLng [2]float64

// UnmarshalJSON rejects pairs that do not have exactly two numbers.
func (p *LatLng) UnmarshalJSON(b []byte) error {
	var raw []float64
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("decode [lat,lng]: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("decode [lat,lng]: expected 2 numbers, got %d", len(raw))
	}
	p[0], p[1] = raw[0], raw[1]
	return nil
}

type OptimizeRouteRequest struct {
	Stops         []Stop `json:"stops"`
	MaintainOrder bool   `json:"maintainOrder"`
	VehicleNumber string `json:"vehicleNumber"`
	Time          string `json:"time"`
	CurrentFuel   string `json:"currentFuel"`
}

type OptimizeRouteResponse struct {
	OptimizedStops []Stop   `json:"optimizedStops"`
	RouteGeometry  []LatLng `json:"routeGeometry"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func StopFromDomain(s domain.Stop) Stop {
	out := Stop{Location: s.Location}
	if s.Coords != nil {
		out.Coords = &Coords{Lat: s.Coords.Lat, Lng: s.Coords.Lng}
	}
	return out
}

func (s Stop) ToDomain() domain.Stop {
	out := domain.Stop{Location: s.Location}
	if s.Coords != nil {
		out.Coords = &domain.Coordinate{Lat: s.Coords.Lat, Lng: s.Coords.Lng}
	}
	return out
}

func StopsFromDomain(stops []domain.Stop) []Stop {
	out := make([]Stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, StopFromDomain(s))
	}
	return out
}

func StopsToDomain(stops []Stop) []domain.Stop {
	out := make([]domain.Stop, 0, len(stops))
	for _, s := range stops {
		out = append(out, s.ToDomain())
	}
	return out
}

func OptimizeRequestFromDomain(r domain.RouteRequest) OptimizeRouteRequest {
	return OptimizeRouteRequest{
		Stops:         StopsFromDomain(r.Stops),
		MaintainOrder: r.MaintainOrder,
		VehicleNumber: r.VehicleNumber,
		Time:          r.Time,
		CurrentFuel:   r.CurrentFuel,
	}
}

func (r OptimizeRouteRequest) ToDomain() domain.RouteRequest {
	return domain.RouteRequest{
		Stops:         StopsToDomain(r.Stops),
		MaintainOrder: r.MaintainOrder,
		VehicleNumber: r.VehicleNumber,
		Time:          r.Time,
		CurrentFuel:   r.CurrentFuel,
	}
}

func GeometryFromDomain(points []domain.Coordinate) []LatLng {
	out := make([]LatLng, 0, len(points))
	for _, p := range points {
		out = append(out, LatLng(p.LatLng()))
	}
	return out
}

func GeometryToDomain(points []LatLng) []domain.Coordinate {
	out := make([]domain.Coordinate, 0, len(points))
	for _, p := range points {
		out = append(out, domain.Coordinate{Lat: p[0], Lng: p[1]})
	}
	return out
}

func OptimizeResponseFromDomain(r domain.RouteResponse) OptimizeRouteResponse {
	return OptimizeRouteResponse{
		OptimizedStops: StopsFromDomain(r.OptimizedStops),
		RouteGeometry:  GeometryFromDomain(r.RouteGeometry),
	}
}

func (r OptimizeRouteResponse) ToDomain() domain.RouteResponse {
	return domain.RouteResponse{
		OptimizedStops: StopsToDomain(r.OptimizedStops),
		RouteGeometry:  GeometryToDomain(r.RouteGeometry),
	}
}
