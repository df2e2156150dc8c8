package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps the audit trail per subject. Used in tests and in
// deployments without Postgres.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
	order  []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string][]Event)
	s.order = nil
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Subject] = append(s.events[event.Subject], event)
	s.order = append(s.order, event)
	return nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject string, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[subject]
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}
	return append([]Event{}, events...), nil
}

// ListRecent returns the most recent N events across all subjects in
// append order.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.order) - limit
	if limit <= 0 || start < 0 {
		start = 0
	}
	return append([]Event{}, s.order[start:]...), nil
}
