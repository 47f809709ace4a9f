package reportstore

import (
	"context"
	"eco-route-service/internal/ports"
	"fmt"
	"sync"
)

// MemoryStore keeps archived reports in process; they are lost on restart.
// Backs tests and the planner when no persistent store is wired.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]ports.ArchivedReport
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: map[string]ports.ArchivedReport{}}
}

func (s *MemoryStore) Save(ctx context.Context, r ports.ArchivedReport) error {
	r.Body = append([]byte(nil), r.Body...)

	s.mu.Lock()
	s.reports[r.ID] = r
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (ports.ArchivedReport, error) {
	s.mu.RLock()
	r, ok := s.reports[id]
	s.mu.RUnlock()

	if !ok {
		return ports.ArchivedReport{}, fmt.Errorf("get report id=%s: %w", id, ports.ErrReportNotFound)
	}
	r.Body = append([]byte(nil), r.Body...)
	return r, nil
}
