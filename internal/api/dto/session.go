package dto

import (
	"eco-route-service/internal/analytics"
	"eco-route-service/internal/domain"
	"time"
)

type CreateSessionRequest struct {
	Preset string `json:"preset"`
}

type Result struct {
	OptimizedStops []Stop    `json:"optimizedStops"`
	RouteGeometry  []LatLng  `json:"routeGeometry"`
	OptimizedAt    time.Time `json:"optimizedAt"`
}

type SessionResponse struct {
	ID            string  `json:"id"`
	Stops         []Stop  `json:"stops"`
	MaintainOrder bool    `json:"maintainOrder"`
	CurrentFuel   string  `json:"currentFuel"`
	Time          string  `json:"time"`
	VehicleNumber string  `json:"vehicleNumber"`
	Unresolved    []int   `json:"unresolved"`
	Phase         string  `json:"phase"`
	Status        string  `json:"status"`
	Result        *Result `json:"result"`
}

// Location mirrors the geocoder's geometry object.
type Location struct {
	Location Coords `json:"location"`
}

// Place is a geocoding candidate in the geocoder's own shape.
type Place struct {
	FormattedAddress string   `json:"formatted_address"`
	Geometry         Location `json:"geometry"`
}

func PlaceFromDomain(p domain.Place) Place {
	return Place{
		FormattedAddress: p.FormattedAddress,
		Geometry:         Location{Location: Coords{Lat: p.Location.Lat, Lng: p.Location.Lng}},
	}
}

func (p Place) ToDomain() domain.Place {
	return domain.Place{
		FormattedAddress: p.FormattedAddress,
		Location:         domain.Coordinate{Lat: p.Geometry.Location.Lat, Lng: p.Geometry.Location.Lng},
	}
}

type GeocodeResponse struct {
	Results []Place `json:"results"`
}

// Op type tags accepted by POST /sessions/{id}/ops.
const (
	OpInsertStop   = "insertStop"
	OpRemoveStop   = "removeStop"
	OpEditLocation = "editLocation"
	OpResolveStop  = "resolveStop"
	OpLoadPreset   = "loadPreset"
	OpSetField     = "setField"
)

// OpRequest is one tagged stop-list edit. Fields other than Type are read
// according to Type; resolveStop takes either Place or Query.
type OpRequest struct {
	Type   string `json:"type"`
	Index  *int   `json:"index,omitempty"`
	Text   string `json:"text,omitempty"`
	Place  *Place `json:"place,omitempty"`
	Query  string `json:"query,omitempty"`
	Preset string `json:"preset,omitempty"`
	Field  string `json:"field,omitempty"`
	Bool   bool   `json:"bool,omitempty"`
}

type AnalyticsResponse struct {
	OriginalDistanceKm   int     `json:"originalDistanceKm"`
	OptimizedDistanceKm  int     `json:"optimizedDistanceKm"`
	DistanceSavedKm      int     `json:"distanceSavedKm"`
	DistanceSavedPercent string  `json:"distanceSavedPercent"`
	TotalEmissionsKg     float64 `json:"totalEmissionsKg"`
	EmissionsSavedKg     float64 `json:"emissionsSavedKg"`
	OriginalCost         float64 `json:"originalCost"`
	OptimizedCost        float64 `json:"optimizedCost"`
	CostSaved            float64 `json:"costSaved"`
	OriginalTime         string  `json:"originalTime"`
	OptimizedTime        string  `json:"optimizedTime"`

	Display  AnalyticsDisplay          `json:"display"`
	Timeline []analytics.TimelinePoint `json:"timeline"`
}

// AnalyticsDisplay holds the figures rendered in the requested units.
type AnalyticsDisplay struct {
	DistanceUnit      string `json:"distanceUnit"`
	EmissionsUnit     string `json:"emissionsUnit"`
	OriginalDistance  string `json:"originalDistance"`
	OptimizedDistance string `json:"optimizedDistance"`
	DistanceSaved     string `json:"distanceSaved"`
	TotalEmissions    string `json:"totalEmissions"`
	EmissionsSaved    string `json:"emissionsSaved"`
	SavedPercent      string `json:"savedPercent"`
	OriginalCost      string `json:"originalCost"`
	OptimizedCost     string `json:"optimizedCost"`
	CostSaved         string `json:"costSaved"`
}

func AnalyticsFromSnapshot(s analytics.Snapshot, f analytics.Formatter) AnalyticsResponse {
	return AnalyticsResponse{
		OriginalDistanceKm:   s.OriginalDistanceKm,
		OptimizedDistanceKm:  s.OptimizedDistanceKm,
		DistanceSavedKm:      s.DistanceSavedKm,
		DistanceSavedPercent: analytics.FormatPercent(s.DistanceSavedPercent),
		TotalEmissionsKg:     s.TotalEmissionsKg,
		EmissionsSavedKg:     s.EmissionsSavedKg,
		OriginalCost:         s.OriginalCost,
		OptimizedCost:        s.OptimizedCost,
		CostSaved:            s.CostSaved,
		OriginalTime:         s.OriginalTime,
		OptimizedTime:        s.OptimizedTime,
		Display: AnalyticsDisplay{
			DistanceUnit:      string(f.DistanceUnit),
			EmissionsUnit:     string(f.EmissionsUnit),
			OriginalDistance:  f.Distance(s.OriginalDistanceKm),
			OptimizedDistance: f.Distance(s.OptimizedDistanceKm),
			DistanceSaved:     f.Distance(s.DistanceSavedKm),
			TotalEmissions:    f.Emissions(s.TotalEmissionsKg),
			EmissionsSaved:    f.Emissions(s.EmissionsSavedKg),
			SavedPercent:      f.Percent(s.DistanceSavedPercent),
			OriginalCost:      f.Cost(s.OriginalCost),
			OptimizedCost:     f.Cost(s.OptimizedCost),
			CostSaved:         f.Cost(s.CostSaved),
		},
		Timeline: analytics.EmissionsTimeline(s),
	}
}

// ViewportResponse is a fit-bounds instruction for the map renderer.
type ViewportResponse struct {
	SouthWest Coords `json:"southWest"`
	NorthEast Coords `json:"northEast"`
	PaddingPx [2]int `json:"paddingPx"`
}

type PresetResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Stops       int    `json:"stops"`
}

type ListPresetsResponse struct {
	Presets []PresetResponse `json:"presets"`
}

type ArchivedReportResponse struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
}

// StatusMessage is one frame of the session status stream.
type StatusMessage struct {
	Phase   string    `json:"phase"`
	Status  string    `json:"status"`
	Failure string    `json:"failure,omitempty"`
	At      time.Time `json:"at"`
}

// KindError is the service error body: the optimizer's {error} shape plus
// the failure kind.
type KindError struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
