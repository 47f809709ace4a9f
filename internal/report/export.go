package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"eco-route-service/internal/domain"

	"github.com/jszwec/csvutil"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// WriteStopsCSV writes the stop sheet: number, location, type, lat, lng.
// Unresolved stops leave lat and lng empty.
func WriteStopsCSV(w io.Writer, d Document) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if len(d.Stops) == 0 {
		if err := enc.EncodeHeader(StopEntry{}); err != nil {
			return fmt.Errorf("write stops csv: header: %w", err)
		}
	}
	for _, s := range d.Stops {
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("write stops csv: stop %d: %w", s.Number, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write stops csv: flush: %w", err)
	}
	return nil
}

// RouteGeoJSON renders the driven route as a LineString feature followed by
// one Point feature per resolved stop.
func RouteGeoJSON(d Document, geometry []domain.Coordinate) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(geometry) > 0 {
		line := geojson.NewFeature(domain.LineString(geometry))
		line.Properties["kind"] = "route"
		line.Properties["vehicleNumber"] = d.RouteInfo.VehicleNumber
		line.Properties["distance"] = d.Metrics.OptimizedDistance
		fc.Append(line)
	}

	for _, s := range d.Stops {
		if s.Lat == nil {
			continue
		}
		p := geojson.NewFeature(orb.Point{*s.Lng, *s.Lat})
		p.Properties["kind"] = "stop"
		p.Properties["number"] = s.Number
		p.Properties["location"] = s.Location
		p.Properties["type"] = string(s.Type)
		fc.Append(p)
	}

	return fc
}
