package services

import (
	"context"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/platform/metrics"
	"eco-route-service/internal/platform/obs"
	"eco-route-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// DefaultColdStartAfter is how long a submission may run before the status
// switches to StatusWakingUp.
const DefaultColdStartAfter = 15 * time.Second

const prewarmTimeout = 60 * time.Second

// Phase is the request lifecycle of an OptimizationClient.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseSubmitting:
		return "Submitting"
	case PhaseSucceeded:
		return "Succeeded"
	case PhaseFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Status is the operator-facing progress message of a submission.
type Status string

const (
	StatusNone       Status = ""
	StatusOptimizing Status = "Optimizing"
	StatusWakingUp   Status = "Waking up server"
)

// StatusEvent describes one lifecycle transition.
type StatusEvent struct {
	Phase  Phase
	Status Status
	// Failure is set when Phase is PhaseFailed.
	Failure domain.Kind
	At      time.Time
}

// OptimizationClient mediates exactly one in-flight optimization at a time.
//
// Submissions are validated locally before any network call, guarded against
// concurrent use, and their responses are checked against the request before
// being handed back. A slow call is never cancelled by the client; after the
// cold-start threshold only the reported status changes.
type OptimizationClient struct {
	optimizer      ports.RouteOptimizer
	coldStartAfter time.Duration
	onStatus       func(StatusEvent)

	mu     sync.Mutex
	phase  Phase
	status Status
	seq    uint64
}

type ClientOption func(*OptimizationClient)

// WithColdStartAfter overrides DefaultColdStartAfter.
func WithColdStartAfter(d time.Duration) ClientOption {
	return func(c *OptimizationClient) { c.coldStartAfter = d }
}

// WithStatusListener registers fn for lifecycle transitions. fn runs while the
// client holds its lock and must not call back into the client.
func WithStatusListener(fn func(StatusEvent)) ClientOption {
	return func(c *OptimizationClient) { c.onStatus = fn }
}

func NewOptimizationClient(optimizer ports.RouteOptimizer, opts ...ClientOption) *OptimizationClient {
	c := &OptimizationClient{
		optimizer:      optimizer,
		coldStartAfter: DefaultColdStartAfter,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current lifecycle phase.
func (c *OptimizationClient) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Status returns the current progress message.
func (c *OptimizationClient) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Submit sends req to the optimizer and returns a validated response.
//
// Failures are one of domain.ErrValidation (nothing sent),
// domain.ErrAlreadySubmitting, domain.ErrNetwork or domain.ErrSchemaViolation.
func (c *OptimizationClient) Submit(ctx context.Context, req domain.RouteRequest) (_ domain.RouteResponse, err error) {
	defer obs.Time(ctx, "optimizer.Submit")(&err)

	if err := ValidateRequest(req); err != nil {
		metrics.OptimizeSubmissions.WithLabelValues(string(domain.KindValidation)).Inc()
		return domain.RouteResponse{}, err
	}

	seq, err := c.begin()
	if err != nil {
		metrics.OptimizeSubmissions.WithLabelValues(string(domain.KindAlreadySubmitting)).Inc()
		return domain.RouteResponse{}, err
	}

	start := time.Now()
	timer := time.AfterFunc(c.coldStartAfter, func() { c.wakingUp(seq) })
	resp, err := c.optimizer.OptimizeRoute(ctx, req)
	timer.Stop()
	metrics.OptimizeLatency.Observe(time.Since(start).Seconds())

	if err == nil {
		err = ValidateResponse(req, resp)
	} else if !errors.Is(err, domain.ErrNetwork) && !errors.Is(err, domain.ErrSchemaViolation) {
		err = fmt.Errorf("optimize route: %w: %v", domain.ErrNetwork, err)
	}

	if err != nil {
		kind := domain.KindOf(err)
		c.finish(PhaseFailed, kind)
		metrics.OptimizeSubmissions.WithLabelValues(string(kind)).Inc()
		return domain.RouteResponse{}, err
	}

	c.finish(PhaseSucceeded, domain.KindNone)
	metrics.OptimizeSubmissions.WithLabelValues("ok").Inc()
	return resp, nil
}

// Prewarm pings the optimizer in the background so a cold-started instance
// begins booting before the first submission. Failures are only logged.
func (c *OptimizationClient) Prewarm(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), prewarmTimeout)
	go func() {
		defer cancel()
		if err := c.optimizer.Health(ctx); err != nil {
			log.Printf("optimizer prewarm failed (ignored): %v", err)
			return
		}
		log.Printf("optimizer prewarm ok")
	}()
}

func (c *OptimizationClient) begin() (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhaseSubmitting {
		return 0, fmt.Errorf("submit: %w", domain.ErrAlreadySubmitting)
	}

	c.seq++
	c.phase = PhaseSubmitting
	c.status = StatusOptimizing
	c.emit(domain.KindNone)
	return c.seq, nil
}

func (c *OptimizationClient) wakingUp(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq != seq || c.phase != PhaseSubmitting {
		return
	}
	c.status = StatusWakingUp
	metrics.ColdStarts.Inc()
	c.emit(domain.KindNone)
}

func (c *OptimizationClient) finish(p Phase, failure domain.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = p
	c.status = StatusNone
	c.emit(failure)
}

// emit must be called with c.mu held.
func (c *OptimizationClient) emit(failure domain.Kind) {
	if c.onStatus == nil {
		return
	}
	c.onStatus(StatusEvent{Phase: c.phase, Status: c.status, Failure: failure, At: time.Now()})
}

// ValidateRequest checks that a request can be submitted: at least two stops,
// every stop resolved, every coordinate in range.
func ValidateRequest(req domain.RouteRequest) error {
	if len(req.Stops) < 2 {
		return fmt.Errorf("validate request: %w: need at least 2 stops, got %d", domain.ErrValidation, len(req.Stops))
	}

	var unresolved []int
	for i, s := range req.Stops {
		if !s.Resolved() {
			unresolved = append(unresolved, i)
			continue
		}
		if !s.Coords.Valid() {
			return fmt.Errorf("validate request: %w: stop %d coordinate %s out of range", domain.ErrValidation, i, *s.Coords)
		}
	}
	if len(unresolved) > 0 {
		return fmt.Errorf("validate request: %w: unresolved stops at %v", domain.ErrValidation, unresolved)
	}

	return nil
}

// ValidateResponse checks a success response against the request it answers:
// the stops must be a permutation of the submitted ones with Start and End in
// place (in submitted order when MaintainOrder is set), and the geometry must
// be a non-empty list of valid coordinates.
func ValidateResponse(req domain.RouteRequest, resp domain.RouteResponse) error {
	n := len(req.Stops)
	if len(resp.OptimizedStops) != n {
		return fmt.Errorf("validate response: %w: got %d stops, submitted %d", domain.ErrSchemaViolation, len(resp.OptimizedStops), n)
	}

	used := make([]bool, n)
	for i, got := range resp.OptimizedStops {
		match := -1
		for j, want := range req.Stops {
			if !used[j] && got.Same(want) {
				match = j
				break
			}
		}
		if match < 0 {
			return fmt.Errorf("validate response: %w: stop %d %q was not submitted", domain.ErrSchemaViolation, i, got.Location)
		}
		used[match] = true
	}

	if !resp.OptimizedStops[0].Same(req.Stops[0]) {
		return fmt.Errorf("validate response: %w: start stop moved", domain.ErrSchemaViolation)
	}
	if !resp.OptimizedStops[n-1].Same(req.Stops[n-1]) {
		return fmt.Errorf("validate response: %w: end stop moved", domain.ErrSchemaViolation)
	}
	if req.MaintainOrder {
		for i := range req.Stops {
			if !resp.OptimizedStops[i].Same(req.Stops[i]) {
				return fmt.Errorf("validate response: %w: stop %d reordered despite maintainOrder", domain.ErrSchemaViolation, i)
			}
		}
	}

	if len(resp.RouteGeometry) == 0 {
		return fmt.Errorf("validate response: %w: empty route geometry", domain.ErrSchemaViolation)
	}
	for i, c := range resp.RouteGeometry {
		if !c.Valid() {
			return fmt.Errorf("validate response: %w: geometry point %d %s out of range", domain.ErrSchemaViolation, i, c)
		}
	}

	return nil
}
