// Package fetcher supplies verifier registry snapshots to the sync engine.
// The engine only sees the Fetcher interface; where a snapshot actually
// comes from (seeded fixture, HTTP source, cache) is an assembly decision.
package fetcher

//go:generate mockgen -source=fetcher.go -destination=mocks/mocks.go -package=mocks Fetcher

import (
	"context"
	"fmt"
	"sync"

	"concord/internal/registry/models"
	id "concord/pkg/domain"
	"concord/pkg/platform/sentinel"
)

// Fetcher retrieves the current snapshot of a verifier registry.
type Fetcher interface {
	Fetch(ctx context.Context, registryID id.RegistryID) (*models.VerifierRegistry, error)
}

// Static serves snapshots from a seeded in-memory map. Used for local
// development and tests; production assemblies wrap an HTTP source.
type Static struct {
	mu         sync.RWMutex
	registries map[id.RegistryID]*models.VerifierRegistry
}

func NewStatic(registries ...*models.VerifierRegistry) *Static {
	s := &Static{registries: make(map[id.RegistryID]*models.VerifierRegistry, len(registries))}
	for _, registry := range registries {
		s.registries[registry.ID] = registry
	}
	return s
}

// Seed replaces the stored snapshot for the registry.
func (s *Static) Seed(registry *models.VerifierRegistry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registries[registry.ID] = registry
}

// Fetch returns a copy of the seeded snapshot so callers may mutate entries
// without corrupting the seed.
func (s *Static) Fetch(_ context.Context, registryID id.RegistryID) (*models.VerifierRegistry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	registry, ok := s.registries[registryID]
	if !ok {
		return nil, fmt.Errorf("registry %s: %w", registryID, sentinel.ErrNotFound)
	}

	snapshot := *registry
	snapshot.Verifiers = make([]models.VerifierEntry, len(registry.Verifiers))
	copy(snapshot.Verifiers, registry.Verifiers)
	return &snapshot, nil
}
