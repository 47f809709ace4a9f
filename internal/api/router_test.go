package api

import (
	"bytes"
	"context"
	"eco-route-service/internal/adapters/reportstore"
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/services"
	"eco-route-service/internal/stoplist"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGeocoder struct{}

func (stubGeocoder) Geocode(ctx context.Context, query string) ([]domain.Place, error) {
	return []domain.Place{{FormattedAddress: "Resolved " + query, Location: domain.Coordinate{Lat: 42.45, Lng: -76.48}}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	catalog, err := stoplist.LoadCatalog("")
	require.NoError(t, err)

	planner := services.NewPlanner(services.PlannerConfig{
		Optimizer: services.NewLocalOptimizer(),
		Geocoding: services.NewGeocodingService(stubGeocoder{}, nil),
		Presets:   catalog,
		Reports:   reportstore.NewMemoryStore(),
		Broker:    services.NewStatusBroker(),
		Now:       func() time.Time { return time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC) },
	})

	srv := httptest.NewServer(NewRouter(planner, Options{}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func createSession(t *testing.T, srv *httptest.Server, preset string) dto.SessionResponse {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/sessions", dto.CreateSessionRequest{Preset: preset})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[dto.SessionResponse](t, resp)
}

func intp(i int) *int { return &i }

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	createSession(t, srv, "")

	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
	health := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(1), health["sessions"])

	resp = do(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	assert.Contains(t, buf.String(), "http_requests_total")
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/health", nil)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestPresets(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/presets", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode[dto.ListPresetsResponse](t, resp)
	require.NotEmpty(t, got.Presets)
	assert.Equal(t, "ithaca-schools", got.Presets[0].Name)
}

func TestPresetSessionOptimizeAnalyticsReport(t *testing.T) {
	srv := newTestServer(t)
	s := createSession(t, srv, "ithaca-schools")
	assert.Empty(t, s.Unresolved)
	base := srv.URL + "/sessions/" + s.ID

	resp := do(t, http.MethodGet, base+"/analytics", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = do(t, http.MethodPost, base+"/optimize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	optimized := decode[dto.SessionResponse](t, resp)
	require.NotNil(t, optimized.Result)
	assert.Equal(t, "Succeeded", optimized.Phase)
	assert.Equal(t, s.Stops[0], optimized.Stops[0])
	assert.Equal(t, s.Stops[len(s.Stops)-1], optimized.Stops[len(optimized.Stops)-1])

	resp = do(t, http.MethodGet, base+"/analytics?distanceUnit=mi&emissionsUnit=trees", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	a := decode[dto.AnalyticsResponse](t, resp)
	assert.Equal(t, a.OriginalDistanceKm-a.OptimizedDistanceKm, a.DistanceSavedKm)
	assert.Equal(t, "mi", a.Display.DistanceUnit)
	assert.True(t, strings.HasSuffix(a.Display.TotalEmissions, "trees/year"))
	assert.Len(t, a.Timeline, 6)

	resp = do(t, http.MethodGet, base+"/analytics?distanceUnit=furlongs", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, base+"/viewport", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	vp := decode[dto.ViewportResponse](t, resp)
	assert.Equal(t, [2]int{50, 50}, vp.PaddingPx)
	assert.Less(t, vp.SouthWest.Lat, vp.NorthEast.Lat)

	resp = do(t, http.MethodGet, base+"/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="route-report-2025-03-07.json"`, resp.Header.Get("Content-Disposition"))
	reportID := resp.Header.Get("X-Report-Id")
	require.NotEmpty(t, reportID)
	doc := decode[map[string]any](t, resp)
	assert.Contains(t, doc, "routeInfo")

	resp = do(t, http.MethodGet, srv.URL+"/reports/"+reportID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	archived := decode[map[string]any](t, resp)
	assert.Equal(t, doc, archived)

	resp = do(t, http.MethodGet, base+"/report?format=csv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	resp = do(t, http.MethodGet, base+"/report?format=geojson", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fc := decode[map[string]any](t, resp)
	assert.Equal(t, "FeatureCollection", fc["type"])

	resp = do(t, http.MethodGet, base+"/report?format=pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestOpsAndFailureKinds(t *testing.T) {
	srv := newTestServer(t)
	s := createSession(t, srv, "")
	ops := srv.URL + "/sessions/" + s.ID + "/ops"

	// unresolved stops block submission locally
	resp := do(t, http.MethodPost, srv.URL+"/sessions/"+s.ID+"/optimize", nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "ValidationError", decode[dto.KindError](t, resp).Kind)

	resp = do(t, http.MethodPost, ops, dto.OpRequest{Type: dto.OpRemoveStop, Index: intp(0)})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "InvariantViolation", decode[dto.KindError](t, resp).Kind)

	resp = do(t, http.MethodPost, ops, dto.OpRequest{Type: dto.OpInsertStop})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.SessionResponse](t, resp).Stops, 3)

	place := dto.PlaceFromDomain(domain.Place{FormattedAddress: "Depot", Location: domain.Coordinate{Lat: 42.48, Lng: -76.45}})
	resp = do(t, http.MethodPost, ops, dto.OpRequest{Type: dto.OpResolveStop, Index: intp(0), Place: &place})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, ops, dto.OpRequest{Type: dto.OpResolveStop, Index: intp(1), Query: "Ithaca High"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.SessionResponse](t, resp)
	assert.Equal(t, "Resolved Ithaca High", got.Stops[1].Location)
	assert.Equal(t, []int{2}, got.Unresolved)

	resp = do(t, http.MethodPost, ops, dto.OpRequest{Type: dto.OpSetField, Field: "maintainOrder", Bool: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.SessionResponse](t, resp).MaintainOrder)

	resp = do(t, http.MethodPost, ops, dto.OpRequest{Type: "teleport"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodPost, ops, dto.OpRequest{Type: dto.OpLoadPreset, Preset: "missing"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, ops, map[string]any{"type": "insertStop", "bogus": 1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/sessions/nope", "/sessions/nope/analytics", "/sessions/nope/viewport", "/reports/nope"} {
		resp := do(t, http.MethodGet, srv.URL+path, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestGeocode(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/geocode?q=Ithaca%20Commons", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.GeocodeResponse](t, resp)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "Resolved Ithaca Commons", got.Results[0].FormattedAddress)
	assert.Equal(t, 42.45, got.Results[0].Geometry.Location.Lat)

	resp = do(t, http.MethodGet, srv.URL+"/geocode?q=", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestStatusStream(t *testing.T) {
	srv := newTestServer(t)
	s := createSession(t, srv, "ithaca-schools")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sessions/" + s.ID + "/status"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var initial dto.StatusMessage
	require.NoError(t, conn.ReadJSON(&initial))
	assert.Equal(t, "Idle", initial.Phase)

	resp := do(t, http.MethodPost, srv.URL+"/sessions/"+s.ID+"/optimize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var submitting, done dto.StatusMessage
	require.NoError(t, conn.ReadJSON(&submitting))
	require.NoError(t, conn.ReadJSON(&done))
	assert.Equal(t, "Submitting", submitting.Phase)
	assert.Equal(t, "Optimizing", submitting.Status)
	assert.Equal(t, "Succeeded", done.Phase)
}

func TestOptimizerRouter(t *testing.T) {
	srv := httptest.NewServer(NewOptimizerRouter(services.NewLocalOptimizer()))
	defer srv.Close()

	resp := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := dto.OptimizeRouteRequest{Stops: []dto.Stop{
		{Location: "a", Coords: &dto.Coords{Lat: 42.0, Lng: -76.5}},
		{Location: "b", Coords: &dto.Coords{Lat: 42.1, Lng: -76.5}},
	}}
	resp = do(t, http.MethodPost, srv.URL+"/optimize_route", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.OptimizeRouteResponse](t, resp)
	assert.Len(t, got.OptimizedStops, 2)
	assert.Equal(t, dto.LatLng{42.0, -76.5}, got.RouteGeometry[0])

	resp = do(t, http.MethodPost, srv.URL+"/optimize_route", dto.OptimizeRouteRequest{Stops: []dto.Stop{{Location: "a"}}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, decode[dto.ErrorResponse](t, resp).Error)
}
