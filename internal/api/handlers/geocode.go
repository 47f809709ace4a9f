package handlers

import (
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/services"
	"net/http"
)

type GeocodeHandler struct {
	Geocoding *services.GeocodingService
}

// Search answers GET /geocode?q= with candidate places in the geocoder's shape.
func (h *GeocodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.Geocoding == nil {
		writeError(w, r, http.StatusServiceUnavailable, "geocoding is not configured")
		return
	}

	places, err := h.Geocoding.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(w, r, err)
		return
	}

	res := dto.GeocodeResponse{Results: make([]dto.Place, 0, len(places))}
	for _, p := range places {
		res.Results = append(res.Results, dto.PlaceFromDomain(p))
	}
	writeJSON(w, r, http.StatusOK, res)
}
