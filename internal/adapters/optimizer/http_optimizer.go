package optimizer

import (
	"context"
	"eco-route-service/internal/api/dto"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultMaxAttempts = 4
	defaultBackoff     = 500 * time.Millisecond
)

// HTTPOptimizer implements ports.RouteOptimizer against a remote optimizer
// exposing POST /optimize_route and GET /health.
//
// The remote instance may be scaled to zero; the first calls after idle
// periods are slow or answered by a proxy with 502/503, which are retried.
// The provider is safe for concurrent use.
type HTTPOptimizer struct {
	session     *http.Client
	baseURL     string
	maxAttempts int
	backoff     time.Duration
}

type Option func(*HTTPOptimizer)

// WithRetry sets the attempt budget and the initial backoff.
func WithRetry(maxAttempts int, backoff time.Duration) Option {
	return func(o *HTTPOptimizer) {
		if maxAttempts > 0 {
			o.maxAttempts = maxAttempts
		}
		o.backoff = backoff
	}
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *HTTPOptimizer) { o.session = c }
}

// NewHTTPOptimizer accepts a base URL with or without scheme; a bare host is
// reached over https.
func NewHTTPOptimizer(baseURL string, opts ...Option) (*HTTPOptimizer, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("optimizer base url is empty")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("optimizer base url %q is invalid", baseURL)
	}

	o := &HTTPOptimizer{
		// No client timeout: a cold start is waited out. Callers cap a call
		// through ctx or WithHTTPClient.
		session:     &http.Client{},
		baseURL:     strings.TrimRight(u.String(), "/"),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *HTTPOptimizer) BaseURL() string { return o.baseURL }

// OptimizeRoute posts the request and decodes the optimized route. Transport
// failures and non-2xx answers wrap domain.ErrNetwork; a 2xx body that does
// not decode wraps domain.ErrSchemaViolation.
func (o *HTTPOptimizer) OptimizeRoute(
	ctx context.Context,
	req domain.RouteRequest,
) (_ domain.RouteResponse, err error) {
	defer obs.Time(ctx, "optimizer.OptimizeRoute")(&err)

	body, err := json.Marshal(dto.OptimizeRequestFromDomain(req))
	if err != nil {
		return domain.RouteResponse{}, fmt.Errorf("optimize route: marshal request: %w", err)
	}

	endpoint := o.baseURL + "/optimize_route"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, body)
	})
	if err != nil {
		return domain.RouteResponse{}, fmt.Errorf("optimize route: %w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.RouteResponse{}, fmt.Errorf("optimize route: read body: %w: %v", domain.ErrNetwork, err)
	}

	var decoded dto.OptimizeRouteResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return domain.RouteResponse{}, fmt.Errorf("optimize route: decode response: %w: %v", domain.ErrSchemaViolation, err)
	}

	return decoded.ToDomain(), nil
}

// Health issues a single GET /health without retries.
func (o *HTTPOptimizer) Health(ctx context.Context) (err error) {
	defer obs.Time(ctx, "optimizer.Health")(&err)

	req, err := o.newRequest(ctx, http.MethodGet, o.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}

	resp, err := o.do(req)
	if err != nil {
		return fmt.Errorf("health: %w: %v", domain.ErrNetwork, err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return nil
}
