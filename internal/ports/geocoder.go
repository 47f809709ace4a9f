package ports

import (
	"context"
	"eco-route-service/internal/domain"
)

// Port: a boundary for resolving free-text queries into places.
type Geocoder interface {
	// Return candidate places for a query, best match first.
	Geocode(ctx context.Context, query string) ([]domain.Place, error)
}

// Persistent cache of query -> best place. Query keys are expected to be
// normalized by the caller.
type GeocodeCache interface {
	GetMany(ctx context.Context, queries []string) (map[string]domain.Place, error)
	PutMany(ctx context.Context, results map[string]domain.Place) error
}
