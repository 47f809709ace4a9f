// Package report builds the downloadable route report from a form and its
// analytics snapshot.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"eco-route-service/internal/analytics"
	"eco-route-service/internal/stoplist"
)

const dateLayout = "2006-01-02"

type StopType string

const (
	StopStart StopType = "Start"
	StopMid   StopType = "Stop"
	StopEnd   StopType = "End"
)

type RouteInfo struct {
	StartLocation string `json:"startLocation"`
	EndLocation   string `json:"endLocation"`
	VehicleNumber string `json:"vehicleNumber"`
	Date          string `json:"date"`
	Time          string `json:"time"`
}

// Metrics holds display strings in the operator's active units.
type Metrics struct {
	OriginalDistance       string `json:"originalDistance"`
	OptimizedDistance      string `json:"optimizedDistance"`
	DistanceSaved          string `json:"distanceSaved"`
	OriginalTime           string `json:"originalTime"`
	OptimizedTime          string `json:"optimizedTime"`
	TotalEmissions         string `json:"totalEmissions"`
	EmissionsSaved         string `json:"emissionsSaved"`
	OptimizationPercentage string `json:"optimizationPercentage"`
	OriginalCost           string `json:"originalCost"`
	OptimizedCost          string `json:"optimizedCost"`
	CostSaved              string `json:"costSaved"`
}

type StopEntry struct {
	Number   int      `json:"number" csv:"number"`
	Location string   `json:"location" csv:"location"`
	Type     StopType `json:"type" csv:"type"`
	Lat      *float64 `json:"-" csv:"lat,omitempty"`
	Lng      *float64 `json:"-" csv:"lng,omitempty"`
}

// Document is the report as downloaded by the operator.
type Document struct {
	RouteInfo RouteInfo   `json:"routeInfo"`
	Metrics   Metrics     `json:"metrics"`
	Stops     []StopEntry `json:"stops"`
}

// Build assembles the report. Stop numbers are 1-based in form order; the
// first stop is the Start and the last the End.
func Build(form stoplist.Form, s analytics.Snapshot, f analytics.Formatter, now time.Time) Document {
	stops := form.Stops()

	doc := Document{
		RouteInfo: RouteInfo{
			VehicleNumber: form.VehicleNumber(),
			Date:          now.Format(dateLayout),
			Time:          form.Time(),
		},
		Metrics: Metrics{
			OriginalDistance:       f.Distance(s.OriginalDistanceKm),
			OptimizedDistance:      f.Distance(s.OptimizedDistanceKm),
			DistanceSaved:          f.Distance(s.DistanceSavedKm),
			OriginalTime:           s.OriginalTime,
			OptimizedTime:          s.OptimizedTime,
			TotalEmissions:         f.Emissions(s.TotalEmissionsKg),
			EmissionsSaved:         f.Emissions(s.EmissionsSavedKg),
			OptimizationPercentage: f.Percent(s.DistanceSavedPercent),
			OriginalCost:           f.Cost(s.OriginalCost),
			OptimizedCost:          f.Cost(s.OptimizedCost),
			CostSaved:              f.Cost(s.CostSaved),
		},
		Stops: make([]StopEntry, 0, len(stops)),
	}

	if len(stops) > 0 {
		doc.RouteInfo.StartLocation = stops[0].Location
		doc.RouteInfo.EndLocation = stops[len(stops)-1].Location
	}

	for i, st := range stops {
		e := StopEntry{Number: i + 1, Location: st.Location, Type: stopType(i, len(stops))}
		if st.Coords != nil {
			lat, lng := st.Coords.Lat, st.Coords.Lng
			e.Lat, e.Lng = &lat, &lng
		}
		doc.Stops = append(doc.Stops, e)
	}

	return doc
}

func stopType(i, n int) StopType {
	switch i {
	case 0:
		return StopStart
	case n - 1:
		return StopEnd
	default:
		return StopMid
	}
}

// FileName is the suggested download name for a report generated at now.
func FileName(now time.Time) string {
	return fmt.Sprintf("route-report-%s.json", now.Format(dateLayout))
}

// CSVFileName is FileName for the stop sheet.
func CSVFileName(now time.Time) string {
	return fmt.Sprintf("route-report-%s.csv", now.Format(dateLayout))
}

// GeoJSONFileName is FileName for the route geometry.
func GeoJSONFileName(now time.Time) string {
	return fmt.Sprintf("route-report-%s.geojson", now.Format(dateLayout))
}

// Marshal encodes the document with two-space indentation.
func (d Document) Marshal() ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return b, nil
}

func WriteJSON(w io.Writer, d Document) error {
	b, err := d.Marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
