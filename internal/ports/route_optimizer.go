package ports

import (
	"context"
	"eco-route-service/internal/domain"
)

// Contract for the external route-optimization service.
// Implementations return transport and backend failures as errors; the
// OptimizationClient classifies them.
type RouteOptimizer interface {
	// Submit stops for optimization and return the reordered stops and driven geometry.
	OptimizeRoute(ctx context.Context, req domain.RouteRequest) (domain.RouteResponse, error)
	// Liveness probe, used to pre-warm a cold-started service.
	Health(ctx context.Context) error
}
