package geocoding

import (
	"context"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	statusOK          = "OK"
	statusZeroResults = "ZERO_RESULTS"
)

type geocodeResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// HTTPGeocoder implements ports.Geocoder against a Google-compatible
// geocoding endpoint (GET ?address=...&key=...).
//
// Outgoing requests share one token bucket, so concurrent sessions never
// exceed the provider's quota. Safe for concurrent use.
type HTTPGeocoder struct {
	session    *http.Client
	endpoint   string
	apiKey     string
	limiter    *rate.Limiter
	maxResults int
}

type Config struct {
	Endpoint string
	APIKey   string
	// RatePerSecond and Burst size the token bucket; zero means 10/s, burst 1.
	RatePerSecond float64
	Burst         int
	MaxResults    int
	Timeout       time.Duration
}

func NewHTTPGeocoder(cfg Config) (*HTTPGeocoder, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("geocoder endpoint is empty")
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &HTTPGeocoder{
		session:    &http.Client{Timeout: cfg.Timeout},
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		maxResults: cfg.MaxResults,
	}, nil
}

// Geocode returns up to MaxResults places for query. ZERO_RESULTS is an
// empty slice, not an error.
func (g *HTTPGeocoder) Geocode(ctx context.Context, query string) (_ []domain.Place, err error) {
	defer obs.Time(ctx, "geocoder.Geocode")(&err)

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("geocode %q: rate limit: %w", query, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: create request: %w", query, err)
	}
	q := req.URL.Query()
	q.Set("address", query)
	if g.apiKey != "" {
		q.Set("key", g.apiKey)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := g.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w: %v", query, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		log.Printf("geocode failed query=%q status=%d body=%s", query, resp.StatusCode, strings.TrimSpace(string(body)))
		return nil, fmt.Errorf("geocode %q: %w: status %d", query, domain.ErrNetwork, resp.StatusCode)
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("geocode %q: decode: %w: %v", query, domain.ErrSchemaViolation, err)
	}

	switch decoded.Status {
	case statusOK:
	case statusZeroResults:
		return []domain.Place{}, nil
	default:
		return nil, fmt.Errorf("geocode %q: %w: provider status %s %s", query, domain.ErrNetwork, decoded.Status, decoded.ErrorMessage)
	}

	out := make([]domain.Place, 0, min(len(decoded.Results), g.maxResults))
	for _, r := range decoded.Results {
		if len(out) == g.maxResults {
			break
		}
		loc := domain.Coordinate{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng}
		if !loc.Valid() {
			log.Printf("geocode skipped invalid result query=%q address=%q location=%s", query, r.FormattedAddress, loc)
			continue
		}
		out = append(out, domain.Place{FormattedAddress: r.FormattedAddress, Location: loc})
	}

	return out, nil
}
