package store

import (
	"context"
	"sync"

	"concord/internal/registry/models"
	id "concord/pkg/domain"
)

const defaultMemoryCapacity = 256

// InMemory keeps the most recent sync results in a bounded ring. Oldest
// results are evicted once capacity is reached.
type InMemory struct {
	mu       sync.RWMutex
	results  []*models.SyncResult
	capacity int
}

func NewInMemory(capacity int) *InMemory {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &InMemory{capacity: capacity}
}

func (s *InMemory) Record(_ context.Context, result *models.SyncResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, result)
	if len(s.results) > s.capacity {
		s.results = s.results[len(s.results)-s.capacity:]
	}
	return nil
}

// ListRecent returns up to limit results, newest first.
func (s *InMemory) ListRecent(_ context.Context, limit int) ([]*models.SyncResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = clampLimit(limit)
	out := make([]*models.SyncResult, 0, limit)
	for i := len(s.results) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.results[i])
	}
	return out, nil
}

// ListByRegistry returns up to limit results for one registry, newest first.
func (s *InMemory) ListByRegistry(_ context.Context, registryID id.RegistryID, limit int) ([]*models.SyncResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = clampLimit(limit)
	out := make([]*models.SyncResult, 0, limit)
	for i := len(s.results) - 1; i >= 0 && len(out) < limit; i-- {
		if s.results[i].RegistryID == registryID {
			out = append(out, s.results[i])
		}
	}
	return out, nil
}
