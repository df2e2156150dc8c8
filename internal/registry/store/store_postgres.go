package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"concord/internal/registry/models"
	id "concord/pkg/domain"
)

// Schema for the sync result history table. CREATE TABLE IF NOT EXISTS so
// every instance can apply it at startup.
const Schema = `
CREATE TABLE IF NOT EXISTS registry_sync_results (
	id                  BIGSERIAL PRIMARY KEY,
	registry_id         TEXT             NOT NULL,
	ts                  TIMESTAMPTZ      NOT NULL,
	chain_height        BIGINT           NOT NULL,
	consensus_achieved  BOOLEAN          NOT NULL,
	consensus_percent   DOUBLE PRECISION NOT NULL,
	verifiers_processed INT              NOT NULL,
	verifiers_validated INT              NOT NULL,
	verifiers_failed    INT              NOT NULL,
	duration_us         BIGINT           NOT NULL,
	errors              TEXT[]           NOT NULL DEFAULT '{}',
	warnings            TEXT[]           NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS registry_sync_results_registry_idx
	ON registry_sync_results (registry_id, ts DESC);
`

// Postgres persists sync results durably.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Record(ctx context.Context, result *models.SyncResult) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registry_sync_results (
			registry_id, ts, chain_height, consensus_achieved, consensus_percent,
			verifiers_processed, verifiers_validated, verifiers_failed,
			duration_us, errors, warnings
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(result.RegistryID),
		result.Timestamp,
		result.ChainHeight,
		result.ConsensusAchieved,
		result.ConsensusPercent,
		result.VerifiersProcessed,
		result.VerifiersValidated,
		result.VerifiersFailed,
		result.Duration.Microseconds(),
		pq.Array(result.Errors),
		pq.Array(result.Warnings),
	)
	if err != nil {
		return fmt.Errorf("record sync result: %w", err)
	}
	return nil
}

func (s *Postgres) ListRecent(ctx context.Context, limit int) ([]*models.SyncResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT registry_id, ts, chain_height, consensus_achieved, consensus_percent,
		       verifiers_processed, verifiers_validated, verifiers_failed,
		       duration_us, errors, warnings
		FROM registry_sync_results
		ORDER BY ts DESC, id DESC
		LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list sync results: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *Postgres) ListByRegistry(ctx context.Context, registryID id.RegistryID, limit int) ([]*models.SyncResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT registry_id, ts, chain_height, consensus_achieved, consensus_percent,
		       verifiers_processed, verifiers_validated, verifiers_failed,
		       duration_us, errors, warnings
		FROM registry_sync_results
		WHERE registry_id = $1
		ORDER BY ts DESC, id DESC
		LIMIT $2`,
		string(registryID),
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("list sync results for registry: %w", err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]*models.SyncResult, error) {
	var results []*models.SyncResult
	for rows.Next() {
		var (
			result     models.SyncResult
			registryID string
			durationUS int64
		)
		if err := rows.Scan(
			&registryID,
			&result.Timestamp,
			&result.ChainHeight,
			&result.ConsensusAchieved,
			&result.ConsensusPercent,
			&result.VerifiersProcessed,
			&result.VerifiersValidated,
			&result.VerifiersFailed,
			&durationUS,
			pq.Array(&result.Errors),
			pq.Array(&result.Warnings),
		); err != nil {
			return nil, fmt.Errorf("scan sync result: %w", err)
		}
		result.RegistryID = id.RegistryID(registryID)
		result.Duration = time.Duration(durationUS) * time.Microsecond
		results = append(results, &result)
	}
	return results, rows.Err()
}
