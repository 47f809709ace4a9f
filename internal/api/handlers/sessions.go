package handlers

import (
	"bytes"
	"eco-route-service/internal/analytics"
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/report"
	"eco-route-service/internal/services"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
)

// SessionHandler exposes planner sessions: stop editing, optimization and
// everything derived from the last result.
type SessionHandler struct {
	Planner *services.Planner
}

func sessionResponse(v services.View) dto.SessionResponse {
	res := dto.SessionResponse{
		ID:            v.ID,
		Stops:         dto.StopsFromDomain(v.Form.Stops()),
		MaintainOrder: v.Form.MaintainOrder(),
		CurrentFuel:   v.Form.CurrentFuel(),
		Time:          v.Form.Time(),
		VehicleNumber: v.Form.VehicleNumber(),
		Unresolved:    v.Form.Unresolved(),
		Phase:         v.Phase.String(),
		Status:        string(v.Status),
	}
	if res.Unresolved == nil {
		res.Unresolved = []int{}
	}
	if v.Result != nil {
		res.Result = &dto.Result{
			OptimizedStops: dto.StopsFromDomain(v.Result.Response.OptimizedStops),
			RouteGeometry:  dto.GeometryFromDomain(v.Result.Response.RouteGeometry),
			OptimizedAt:    v.Result.OptimizedAt,
		}
	}
	return res
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSessionRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	v, err := h.Planner.CreateSession(r.Context(), req.Preset)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	w.Header().Set("Location", "/sessions/"+v.ID)
	writeJSON(w, r, http.StatusCreated, sessionResponse(v))
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, err := h.Planner.Session(r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(v))
}

func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Planner.DeleteSession(r.PathValue("id")); err != nil {
		writeFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Apply runs one tagged stop-list edit.
func (h *SessionHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req dto.OpRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	op, query, err := decodeOp(req, h.Planner.Presets())
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	id := r.PathValue("id")
	var v services.View
	if op == nil {
		v, err = h.Planner.ResolveStopQuery(r.Context(), id, *req.Index, query)
	} else {
		v, err = h.Planner.Apply(r.Context(), id, op)
	}
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(v))
}

// Optimize submits the session's current stops. It blocks until the
// optimizer answers; progress is observable on the status stream.
func (h *SessionHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	v, err := h.Planner.Optimize(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sessionResponse(v))
}

func formatterFrom(w http.ResponseWriter, r *http.Request) (analytics.Formatter, bool) {
	q := r.URL.Query()
	f, err := analytics.ParseFormatter(q.Get("distanceUnit"), q.Get("emissionsUnit"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return analytics.Formatter{}, false
	}
	return f, true
}

func (h *SessionHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	f, ok := formatterFrom(w, r)
	if !ok {
		return
	}

	snap, err := h.Planner.Analytics(r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.AnalyticsFromSnapshot(snap, f))
}

func (h *SessionHandler) Viewport(w http.ResponseWriter, r *http.Request) {
	fb, ok, err := h.Planner.Viewport(r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sw, ne := fb.SouthWest(), fb.NorthEast()
	writeJSON(w, r, http.StatusOK, dto.ViewportResponse{
		SouthWest: dto.Coords{Lat: sw.Lat, Lng: sw.Lng},
		NorthEast: dto.Coords{Lat: ne.Lat, Lng: ne.Lng},
		PaddingPx: fb.PaddingPx,
	})
}

// Report downloads the session report as json (default, also archived),
// csv or geojson.
func (h *SessionHandler) Report(w http.ResponseWriter, r *http.Request) {
	f, ok := formatterFrom(w, r)
	if !ok {
		return
	}

	e, err := h.Planner.Report(r.PathValue("id"), f)
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	var buf bytes.Buffer
	var fileName, contentType string

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		if err := report.WriteJSON(&buf, e.Document); err != nil {
			writeFailure(w, r, err)
			return
		}
		fileName, contentType = report.FileName(e.GeneratedAt), "application/json"

		archived, err := h.Planner.ArchiveReport(r.Context(), e)
		if err != nil {
			log.Printf("report archive failed (ignored): session=%s err=%v", r.PathValue("id"), err)
		} else {
			w.Header().Set("X-Report-Id", archived.ID)
		}

	case "csv":
		if err := report.WriteStopsCSV(&buf, e.Document); err != nil {
			writeFailure(w, r, err)
			return
		}
		fileName, contentType = report.CSVFileName(e.GeneratedAt), "text/csv"

	case "geojson":
		if err := json.NewEncoder(&buf).Encode(report.RouteGeoJSON(e.Document, e.Geometry)); err != nil {
			writeFailure(w, r, err)
			return
		}
		fileName, contentType = report.GeoJSONFileName(e.GeneratedAt), "application/geo+json"

	default:
		writeError(w, r, http.StatusBadRequest, "format must be json, csv or geojson")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(fileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ArchivedReport serves a previously exported JSON report by id.
func (h *SessionHandler) ArchivedReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Planner.ArchivedReport(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(rep.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rep.Body)
}
