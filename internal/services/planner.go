package services

import (
	"context"
	"eco-route-service/internal/analytics"
	"eco-route-service/internal/domain"
	"eco-route-service/internal/ports"
	"eco-route-service/internal/report"
	"eco-route-service/internal/stoplist"
	"eco-route-service/internal/viewport"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownPreset   = errors.New("unknown preset")
	// ErrNoResult is returned when a session has no successful optimization to report on.
	ErrNoResult = errors.New("no optimization result")
	// ErrStaleResult is returned when the stop list was edited while its
	// submission was in flight. The response is discarded.
	ErrStaleResult = errors.New("stop list changed during optimization")
)

// Result is the outcome of one successful submission. It is replaced in full
// by the next submission and never merged.
type Result struct {
	Response    domain.RouteResponse
	OptimizedAt time.Time
}

// Session is one operator's planning state: the current form snapshot, the
// last result and a dedicated optimization client.
type Session struct {
	ID        string
	CreatedAt time.Time

	client *OptimizationClient

	mu       sync.Mutex
	form     stoplist.Form
	revision uint64
	result   *Result
	lastSeen time.Time
}

// View is a consistent read of a session.
type View struct {
	ID     string
	Form   stoplist.Form
	Result *Result
	Phase  Phase
	Status Status
}

func (s *Session) view() View {
	s.mu.Lock()
	form, result := s.form, s.result
	s.mu.Unlock()

	return View{ID: s.ID, Form: form, Result: result, Phase: s.client.Phase(), Status: s.client.Status()}
}

// Planner owns the sessions and wires them to the optimizer, geocoder,
// presets and report archive.
type Planner struct {
	optimizer  ports.RouteOptimizer
	geocoding  *GeocodingService
	presets    *stoplist.Catalog
	reports    ports.ReportStore
	broker     *StatusBroker
	clientOpts []ClientOption
	sessionTTL time.Duration
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

type PlannerConfig struct {
	Optimizer ports.RouteOptimizer
	// Geocoding, Reports and Broker may be nil.
	Geocoding *GeocodingService
	Presets   *stoplist.Catalog
	Reports   ports.ReportStore
	Broker    *StatusBroker
	// ClientOptions are applied to every session's OptimizationClient.
	ClientOptions []ClientOption
	// SessionTTL is how long an untouched session survives PruneIdle.
	// Zero keeps sessions until deleted.
	SessionTTL time.Duration
	Now        func() time.Time
}

func NewPlanner(cfg PlannerConfig) *Planner {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Planner{
		optimizer:  cfg.Optimizer,
		geocoding:  cfg.Geocoding,
		presets:    cfg.Presets,
		reports:    cfg.Reports,
		broker:     cfg.Broker,
		clientOpts: cfg.ClientOptions,
		sessionTTL: cfg.SessionTTL,
		now:        now,
		sessions:   map[string]*Session{},
	}
}

func (p *Planner) Presets() *stoplist.Catalog { return p.presets }

// CreateSession starts a session from an empty form, or from the named preset
// when preset is non-empty, and pre-warms the optimizer.
func (p *Planner) CreateSession(ctx context.Context, preset string) (View, error) {
	form := stoplist.New()
	if preset != "" {
		t, ok := p.lookupPreset(preset)
		if !ok {
			return View{}, fmt.Errorf("create session: %w: %q", ErrUnknownPreset, preset)
		}
		form = form.LoadPreset(t)
	}

	created := p.now()
	s := &Session{ID: uuid.NewString(), CreatedAt: created, form: form, lastSeen: created}

	opts := append([]ClientOption(nil), p.clientOpts...)
	if p.broker != nil {
		broker, id := p.broker, s.ID
		opts = append(opts, WithStatusListener(func(e StatusEvent) { broker.Publish(id, e) }))
	}
	s.client = NewOptimizationClient(p.optimizer, opts...)

	p.mu.Lock()
	p.sessions[s.ID] = s
	p.mu.Unlock()

	log.Printf("session created id=%s preset=%q stops=%d", s.ID, preset, form.Len())
	s.client.Prewarm(ctx)

	return s.view(), nil
}

func (p *Planner) lookupPreset(name string) (stoplist.Template, bool) {
	if p.presets == nil {
		return stoplist.Template{}, false
	}
	return p.presets.Get(name)
}

func (p *Planner) session(id string) (*Session, error) {
	p.mu.RLock()
	s, ok := p.sessions[id]
	p.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}

	s.mu.Lock()
	s.lastSeen = p.now()
	s.mu.Unlock()
	return s, nil
}

func (p *Planner) Session(id string) (View, error) {
	s, err := p.session(id)
	if err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// SessionCount returns the number of open sessions.
func (p *Planner) SessionCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}

// PruneIdle forgets sessions untouched for longer than the session TTL and
// returns how many were removed. Sessions with a submission in flight are kept.
func (p *Planner) PruneIdle() int {
	if p.sessionTTL <= 0 {
		return 0
	}
	cutoff := p.now().Add(-p.sessionTTL)

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, s := range p.sessions {
		s.mu.Lock()
		idle := s.lastSeen.Before(cutoff)
		s.mu.Unlock()

		if idle && s.client.Phase() != PhaseSubmitting {
			delete(p.sessions, id)
			removed++
		}
	}
	return removed
}

// RunJanitor calls PruneIdle every interval until ctx is done.
func (p *Planner) RunJanitor(ctx context.Context, interval time.Duration) {
	if p.sessionTTL <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := p.PruneIdle(); n > 0 {
				log.Printf("pruned idle sessions count=%d ttl=%s", n, p.sessionTTL)
			}
		}
	}
}

// DeleteSession forgets a session. An in-flight submission still completes.
func (p *Planner) DeleteSession(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	delete(p.sessions, id)
	return nil
}

// Apply runs op against the session's current form and swaps in the result.
// A failed op leaves the form unchanged.
func (p *Planner) Apply(ctx context.Context, id string, op stoplist.Op) (View, error) {
	s, err := p.session(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	next, err := stoplist.Apply(s.form, op)
	if err == nil {
		s.form = next
		s.revision++
	}
	s.mu.Unlock()

	if err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// ResolveStopQuery geocodes query and applies its best match to stop i.
func (p *Planner) ResolveStopQuery(ctx context.Context, id string, i int, query string) (View, error) {
	if p.geocoding == nil {
		return View{}, fmt.Errorf("resolve stop: %w: geocoding is not configured", domain.ErrValidation)
	}
	place, err := p.geocoding.Resolve(ctx, query)
	if err != nil {
		return View{}, fmt.Errorf("resolve stop %d: %w", i, err)
	}
	return p.Apply(ctx, id, stoplist.ResolveStop{Index: i, Place: place})
}

// Optimize submits the current form snapshot. On success the optimized stop
// order replaces the form's stops and the result replaces the previous one.
// A failed submission clears the previous result; a rejected concurrent
// submit leaves the in-flight one alone.
//
// The submission outlives ctx: the optimizer call is never cancelled by the
// caller going away. If the form was edited while the call was in flight,
// the response is discarded and ErrStaleResult returned; form and previous
// result stay as the edits left them.
func (p *Planner) Optimize(ctx context.Context, id string) (View, error) {
	s, err := p.session(id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	submitted, revision := s.form, s.revision
	s.mu.Unlock()

	resp, err := s.client.Submit(context.WithoutCancel(ctx), submitted.Request())
	if err != nil {
		if !errors.Is(err, domain.ErrAlreadySubmitting) {
			s.mu.Lock()
			if s.revision == revision {
				s.result = nil
			}
			s.mu.Unlock()
		}
		return View{}, err
	}

	s.mu.Lock()
	if s.revision != revision {
		s.mu.Unlock()
		log.Printf("optimize result discarded id=%s: stop list edited in flight", id)
		return View{}, fmt.Errorf("optimize %s: %w", id, ErrStaleResult)
	}
	next, err := submitted.WithOptimizedStops(resp.OptimizedStops)
	if err == nil {
		s.form = next
		s.revision++
		s.result = &Result{Response: resp, OptimizedAt: p.now()}
	} else {
		s.result = nil
	}
	s.mu.Unlock()

	if err != nil {
		return View{}, err
	}
	return s.view(), nil
}

// Analytics derives metrics from the last result and the current form.
func (p *Planner) Analytics(id string) (analytics.Snapshot, error) {
	v, err := p.Session(id)
	if err != nil {
		return analytics.Snapshot{}, err
	}
	if v.Result == nil {
		return analytics.Snapshot{}, fmt.Errorf("analytics %s: %w", id, ErrNoResult)
	}
	return analytics.Compute(v.Result.Response.RouteGeometry, v.Form.Time()), nil
}

// Viewport frames the last route, or the start and end stops when there is
// no result. ok is false when neither is available.
func (p *Planner) Viewport(id string) (_ viewport.FitBounds, ok bool, err error) {
	v, err := p.Session(id)
	if err != nil {
		return viewport.FitBounds{}, false, err
	}

	var route []domain.Coordinate
	if v.Result != nil {
		route = v.Result.Response.RouteGeometry
	}
	fb, ok := viewport.Fit(route, v.Form.Start(), v.Form.End())
	return fb, ok, nil
}

// Export is a built report together with the geometry it describes.
type Export struct {
	Document    report.Document
	Geometry    []domain.Coordinate
	GeneratedAt time.Time
}

// Report builds the session's report in the given display units. It
// requires a successful optimization.
func (p *Planner) Report(id string, f analytics.Formatter) (Export, error) {
	v, err := p.Session(id)
	if err != nil {
		return Export{}, err
	}
	if v.Result == nil {
		return Export{}, fmt.Errorf("report %s: %w", id, ErrNoResult)
	}

	now := p.now()
	snap := analytics.Compute(v.Result.Response.RouteGeometry, v.Form.Time())
	return Export{
		Document:    report.Build(v.Form, snap, f, now),
		Geometry:    v.Result.Response.RouteGeometry,
		GeneratedAt: now,
	}, nil
}

// ArchiveReport stores the JSON rendering of e and returns its archive entry.
func (p *Planner) ArchiveReport(ctx context.Context, e Export) (ports.ArchivedReport, error) {
	if p.reports == nil {
		return ports.ArchivedReport{}, errors.New("archive report: no report store configured")
	}

	body, err := e.Document.Marshal()
	if err != nil {
		return ports.ArchivedReport{}, fmt.Errorf("archive report: %w", err)
	}

	r := ports.ArchivedReport{
		ID:        uuid.NewString(),
		FileName:  report.FileName(e.GeneratedAt),
		Body:      body,
		CreatedAt: e.GeneratedAt,
	}
	if err := p.reports.Save(ctx, r); err != nil {
		return ports.ArchivedReport{}, fmt.Errorf("archive report: %w", err)
	}
	return r, nil
}

func (p *Planner) ArchivedReport(ctx context.Context, id string) (ports.ArchivedReport, error) {
	if p.reports == nil {
		return ports.ArchivedReport{}, fmt.Errorf("archived report %s: %w", id, ports.ErrReportNotFound)
	}
	return p.reports.Get(ctx, id)
}

// Broker returns the status broker, which may be nil.
func (p *Planner) Broker() *StatusBroker { return p.broker }

// Geocoding returns the geocoding service, which may be nil.
func (p *Planner) Geocoding() *GeocodingService { return p.geocoding }
