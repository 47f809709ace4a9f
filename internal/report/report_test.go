package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"eco-route-service/internal/analytics"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/stoplist"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportDay = time.Date(2025, 3, 7, 16, 45, 0, 0, time.UTC)

func threeStopForm(t *testing.T) stoplist.Form {
	t.Helper()

	f := stoplist.New().InsertStop()
	places := []domain.Place{
		{FormattedAddress: "Depot", Location: domain.Coordinate{Lat: 42.48, Lng: -76.45}},
		{FormattedAddress: "School", Location: domain.Coordinate{Lat: 42.46, Lng: -76.48}},
	}
	var err error
	for i, p := range places {
		f, err = f.SetStopCoords(i, p)
		require.NoError(t, err)
	}
	f, err = f.SetStopLocationText(2, "Garage")
	require.NoError(t, err)
	return f.WithVehicleNumber("BUS-042").WithTime("7:30")
}

func hundredKmSnapshot() analytics.Snapshot {
	return analytics.Snapshot{
		OriginalDistanceKm:   100,
		OptimizedDistanceKm:  85,
		DistanceSavedKm:      15,
		DistanceSavedPercent: 15,
		TotalEmissionsKg:     10.2,
		EmissionsSavedKg:     1.8,
		OriginalCost:         15,
		OptimizedCost:        12.75,
		CostSaved:            2.25,
		OriginalTime:         "6h 30m",
		OptimizedTime:        "5h 23m",
	}
}

func TestBuild(t *testing.T) {
	f, err := analytics.ParseFormatter("", "")
	require.NoError(t, err)

	doc := Build(threeStopForm(t), hundredKmSnapshot(), f, reportDay)

	assert.Equal(t, RouteInfo{
		StartLocation: "Depot",
		EndLocation:   "Garage",
		VehicleNumber: "BUS-042",
		Date:          "2025-03-07",
		Time:          "7:30",
	}, doc.RouteInfo)

	assert.Equal(t, "100 km", doc.Metrics.OriginalDistance)
	assert.Equal(t, "85 km", doc.Metrics.OptimizedDistance)
	assert.Equal(t, "15 km", doc.Metrics.DistanceSaved)
	assert.Equal(t, "10.2 kg CO₂", doc.Metrics.TotalEmissions)
	assert.Equal(t, "1.8 kg CO₂", doc.Metrics.EmissionsSaved)
	assert.Equal(t, "15.0%", doc.Metrics.OptimizationPercentage)
	assert.Equal(t, "$2.25", doc.Metrics.CostSaved)
	assert.Equal(t, "5h 23m", doc.Metrics.OptimizedTime)

	require.Len(t, doc.Stops, 3)
	for i, want := range []StopType{StopStart, StopMid, StopEnd} {
		assert.Equal(t, i+1, doc.Stops[i].Number)
		assert.Equal(t, want, doc.Stops[i].Type)
	}
	assert.Nil(t, doc.Stops[2].Lat)
}

func TestBuildUsesActiveUnits(t *testing.T) {
	f, err := analytics.ParseFormatter("mi", "trees")
	require.NoError(t, err)

	doc := Build(threeStopForm(t), hundredKmSnapshot(), f, reportDay)

	assert.Equal(t, "52.8 mi", doc.Metrics.OptimizedDistance)
	assert.Equal(t, "0.9 trees/year", doc.Metrics.TotalEmissions)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "route-report-2025-03-07.json", FileName(reportDay))
	assert.Equal(t, "route-report-2025-03-07.csv", CSVFileName(reportDay))
	assert.Equal(t, "route-report-2025-03-07.geojson", GeoJSONFileName(reportDay))
}

func TestWriteJSON(t *testing.T) {
	doc := Build(threeStopForm(t), hundredKmSnapshot(), analytics.Formatter{DistanceUnit: analytics.Kilometers, EmissionsUnit: analytics.CO2}, reportDay)

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	assert.True(t, strings.HasPrefix(buf.String(), "{\n  \"routeInfo\""))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.ElementsMatch(t, []string{"routeInfo", "metrics", "stops"}, keys(decoded))

	stops := decoded["stops"].([]any)
	first := stops[0].(map[string]any)
	assert.Equal(t, map[string]any{"number": float64(1), "location": "Depot", "type": "Start"}, first)
}

func TestWriteStopsCSV(t *testing.T) {
	doc := Build(threeStopForm(t), hundredKmSnapshot(), analytics.Formatter{}, reportDay)

	var buf bytes.Buffer
	require.NoError(t, WriteStopsCSV(&buf, doc))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "number,location,type,lat,lng", lines[0])
	assert.Equal(t, "1,Depot,Start,42.48,-76.45", lines[1])
	assert.Equal(t, "3,Garage,End,,", lines[3])
}

func TestWriteStopsCSVHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStopsCSV(&buf, Document{}))

	assert.Equal(t, "number,location,type,lat,lng\n", buf.String())
}

func TestRouteGeoJSON(t *testing.T) {
	doc := Build(threeStopForm(t), hundredKmSnapshot(), analytics.Formatter{}, reportDay)
	geometry := []domain.Coordinate{{Lat: 42.48, Lng: -76.45}, {Lat: 42.47, Lng: -76.46}, {Lat: 42.46, Lng: -76.48}}

	fc := RouteGeoJSON(doc, geometry)

	// one route plus the two resolved stops
	require.Len(t, fc.Features, 3)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.Point{-76.45, 42.48}, line[0])
	assert.Equal(t, "route", fc.Features[0].Properties["kind"])

	assert.Equal(t, orb.Point{-76.48, 42.46}, fc.Features[2].Geometry)
	assert.Equal(t, "Stop", fc.Features[2].Properties["type"])

	b, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"FeatureCollection"`)
}

func TestRouteGeoJSONWithoutGeometry(t *testing.T) {
	fc := RouteGeoJSON(Document{}, nil)

	assert.Empty(t, fc.Features)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
