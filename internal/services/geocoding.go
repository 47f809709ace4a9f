package services

import (
	"context"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/platform/metrics"
	"eco-route-service/internal/ports"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/singleflight"
)

// GeocodingService resolves operator queries into places.
//
// The best match of every successful lookup is cached; a cache hit answers
// with that single place. Concurrent lookups of the same query share one
// provider call.
type GeocodingService struct {
	geocoder ports.Geocoder
	cache    ports.GeocodeCache
	group    singleflight.Group
}

// NewGeocodingService accepts a nil cache.
func NewGeocodingService(geocoder ports.Geocoder, cache ports.GeocodeCache) *GeocodingService {
	return &GeocodingService{geocoder: geocoder, cache: cache}
}

// NormalizeQuery collapses whitespace and case so equivalent queries share a cache key.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}

// Search returns candidate places for query, best first.
func (g *GeocodingService) Search(ctx context.Context, query string) ([]domain.Place, error) {
	key := NormalizeQuery(query)
	if key == "" {
		return nil, fmt.Errorf("geocode: %w: empty query", domain.ErrValidation)
	}

	if g.cache != nil {
		hits, err := g.cache.GetMany(ctx, []string{key})
		if err != nil {
			log.Printf("geocode cache read failed (ignored) query=%q err=%v", key, err)
		} else if p, ok := hits[key]; ok {
			metrics.GeocodeLookups.WithLabelValues("cache", "hit").Inc()
			return []domain.Place{p}, nil
		}
	}

	v, err, shared := g.group.Do(key, func() (any, error) {
		places, err := g.geocoder.Geocode(ctx, strings.Join(strings.Fields(query), " "))
		if err != nil {
			return nil, err
		}
		if len(places) > 0 && g.cache != nil {
			if err := g.cache.PutMany(ctx, map[string]domain.Place{key: places[0]}); err != nil {
				log.Printf("geocode cache write failed (ignored) query=%q err=%v", key, err)
			}
		}
		return places, nil
	})
	if err != nil {
		metrics.GeocodeLookups.WithLabelValues("provider", "error").Inc()
		return nil, fmt.Errorf("geocode %q: %w", key, err)
	}

	places := v.([]domain.Place)
	result := "hit"
	if len(places) == 0 {
		result = "empty"
	}
	if !shared {
		metrics.GeocodeLookups.WithLabelValues("provider", result).Inc()
	}

	return append([]domain.Place(nil), places...), nil
}

// Resolve returns the best place for query; no match is a validation failure.
func (g *GeocodingService) Resolve(ctx context.Context, query string) (domain.Place, error) {
	places, err := g.Search(ctx, query)
	if err != nil {
		return domain.Place{}, err
	}
	if len(places) == 0 {
		return domain.Place{}, fmt.Errorf("geocode %q: %w: no results", query, domain.ErrValidation)
	}
	return places[0], nil
}
