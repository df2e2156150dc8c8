// Package store persists registry sync results so operators can inspect
// recent sync history. The engine records through the ResultStore interface;
// memory and Postgres implementations are interchangeable.
package store

import (
	"context"

	"concord/internal/registry/models"
	id "concord/pkg/domain"
)

// ResultStore records sync results and serves recent history.
type ResultStore interface {
	Record(ctx context.Context, result *models.SyncResult) error
	ListRecent(ctx context.Context, limit int) ([]*models.SyncResult, error)
	ListByRegistry(ctx context.Context, registryID id.RegistryID, limit int) ([]*models.SyncResult, error)
}

const defaultListLimit = 50

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return limit
}
