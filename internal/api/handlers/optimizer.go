package handlers

import (
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/ports"
	"errors"
	"log"
	"net/http"
)

// OptimizerHandler serves the optimizer contract (POST /optimize_route)
// on top of any RouteOptimizer. Failures use the {error} body.
type OptimizerHandler struct {
	Optimizer ports.RouteOptimizer
}

func (h *OptimizerHandler) OptimizeRoute(w http.ResponseWriter, r *http.Request) {
	var req dto.OptimizeRouteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.Stops == nil {
		writeError(w, r, http.StatusBadRequest, "JSON payload missing required keys: stops")
		return
	}

	log.Printf("optimize request stops=%d maintain_order=%t vehicle=%q", len(req.Stops), req.MaintainOrder, req.VehicleNumber)

	resp, err := h.Optimizer.OptimizeRoute(r.Context(), req.ToDomain())
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("optimize failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "solver could not find a solution")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.OptimizeResponseFromDomain(resp))
}

// Ready answers the optimizer's GET /health once the solver responds.
func (h *OptimizerHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.Optimizer.Health(r.Context()); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "optimizer not ready")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
