package handlers

import (
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/stoplist"
	"net/http"
)

type PresetHandler struct {
	Catalog *stoplist.Catalog
}

func (h *PresetHandler) List(w http.ResponseWriter, r *http.Request) {
	res := dto.ListPresetsResponse{Presets: []dto.PresetResponse{}}
	if h.Catalog != nil {
		for _, name := range h.Catalog.Names() {
			t, _ := h.Catalog.Get(name)
			res.Presets = append(res.Presets, dto.PresetResponse{
				Name:        t.Name,
				Description: t.Description,
				Stops:       len(t.Stops),
			})
		}
	}
	writeJSON(w, r, http.StatusOK, res)
}
