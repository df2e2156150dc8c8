package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
	"concord/pkg/platform/sentinel"
)

// Schema is the proposal repository DDL. Applied on startup; CREATE IF NOT
// EXISTS keeps repeated application safe.
const Schema = `
CREATE TABLE IF NOT EXISTS regional_proposals (
	id                      UUID PRIMARY KEY,
	title                   TEXT NOT NULL,
	description             TEXT NOT NULL,
	primary_jurisdiction    TEXT NOT NULL,
	secondary_jurisdictions TEXT[] NOT NULL DEFAULT '{}',
	federation_wide         BOOLEAN NOT NULL DEFAULT FALSE,
	proposal_type           TEXT NOT NULL,
	nodes                   TEXT[] NOT NULL DEFAULT '{}',
	content_hash            TEXT NOT NULL,
	cross_deck_surfaces     TEXT[] NOT NULL DEFAULT '{}',
	min_participation       DOUBLE PRECISION NOT NULL DEFAULT 0,
	tier_weighting          BOOLEAN NOT NULL DEFAULT FALSE,
	emergency_bypass        BOOLEAN NOT NULL DEFAULT FALSE,
	eligible_voters         INT NOT NULL DEFAULT 0,
	window_start            TIMESTAMPTZ NOT NULL,
	window_end              TIMESTAMPTZ NOT NULL,
	window_extendable       BOOLEAN NOT NULL DEFAULT FALSE,
	sync_status             TEXT NOT NULL,
	support_votes           INT NOT NULL DEFAULT 0,
	oppose_votes            INT NOT NULL DEFAULT 0,
	abstain_votes           INT NOT NULL DEFAULT 0,
	participation           DOUBLE PRECISION NOT NULL DEFAULT 0,
	submitter               TEXT NOT NULL,
	submitted_at            TIMESTAMPTZ NOT NULL,
	modified_at             TIMESTAMPTZ NOT NULL,
	urgency                 TEXT NOT NULL,
	validator_hash          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_regional_proposals_primary_jurisdiction
	ON regional_proposals (primary_jurisdiction);
CREATE INDEX IF NOT EXISTS idx_regional_proposals_submitted_at
	ON regional_proposals (submitted_at DESC);
`

// Postgres is the pgx-backed Repository.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a repository on the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Save upserts the full proposal row. Re-pushed federation proposals and
// superseding submissions overwrite the previous state.
func (s *Postgres) Save(ctx context.Context, p *models.RegionalProposal) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO regional_proposals (
			id, title, description,
			primary_jurisdiction, secondary_jurisdictions, federation_wide,
			proposal_type, nodes, content_hash, cross_deck_surfaces,
			min_participation, tier_weighting, emergency_bypass, eligible_voters,
			window_start, window_end, window_extendable,
			sync_status, support_votes, oppose_votes, abstain_votes, participation,
			submitter, submitted_at, modified_at, urgency, validator_hash
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27
		)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			primary_jurisdiction = EXCLUDED.primary_jurisdiction,
			secondary_jurisdictions = EXCLUDED.secondary_jurisdictions,
			federation_wide = EXCLUDED.federation_wide,
			proposal_type = EXCLUDED.proposal_type,
			nodes = EXCLUDED.nodes,
			content_hash = EXCLUDED.content_hash,
			cross_deck_surfaces = EXCLUDED.cross_deck_surfaces,
			min_participation = EXCLUDED.min_participation,
			tier_weighting = EXCLUDED.tier_weighting,
			emergency_bypass = EXCLUDED.emergency_bypass,
			eligible_voters = EXCLUDED.eligible_voters,
			window_start = EXCLUDED.window_start,
			window_end = EXCLUDED.window_end,
			window_extendable = EXCLUDED.window_extendable,
			sync_status = EXCLUDED.sync_status,
			support_votes = EXCLUDED.support_votes,
			oppose_votes = EXCLUDED.oppose_votes,
			abstain_votes = EXCLUDED.abstain_votes,
			participation = EXCLUDED.participation,
			submitter = EXCLUDED.submitter,
			submitted_at = EXCLUDED.submitted_at,
			modified_at = EXCLUDED.modified_at,
			urgency = EXCLUDED.urgency,
			validator_hash = EXCLUDED.validator_hash`,
		p.ID.String(), p.Title, p.Description,
		p.Scope.Primary.String(), toStrings(p.Scope.Secondary), p.Scope.FederationWide,
		p.Type.String(), toStrings(p.Nodes), p.ContentHash, toStrings(p.CrossDeck.Surfaces),
		p.Quorum.MinParticipation, p.Quorum.TierWeighting, p.Quorum.EmergencyBypass, p.Quorum.EligibleVoters,
		p.Window.Start, p.Window.End, p.Window.Extendable,
		p.SyncStatus.String(), p.Tallies.Support, p.Tallies.Oppose, p.Tallies.Abstain, p.Tallies.Participation,
		p.Meta.Submitter, p.Meta.SubmittedAt, p.Meta.ModifiedAt, p.Meta.Urgency.String(), p.Meta.ValidatorHash,
	)
	if err != nil {
		return fmt.Errorf("save proposal: %w", err)
	}
	return nil
}

// UpdateVotes persists the current tallies.
func (s *Postgres) UpdateVotes(ctx context.Context, proposalID id.ProposalID, tallies models.VoteTallies, modifiedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE regional_proposals
		SET support_votes = $2, oppose_votes = $3, abstain_votes = $4,
		    participation = $5, modified_at = $6
		WHERE id = $1`,
		proposalID.String(), tallies.Support, tallies.Oppose, tallies.Abstain,
		tallies.Participation, modifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update votes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	return nil
}

// UpdateSyncStatus persists a sync status transition.
func (s *Postgres) UpdateSyncStatus(ctx context.Context, proposalID id.ProposalID, status models.SyncStatus, modifiedAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE regional_proposals
		SET sync_status = $2, modified_at = $3
		WHERE id = $1`,
		proposalID.String(), status.String(), modifiedAt,
	)
	if err != nil {
		return fmt.Errorf("update sync status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("proposal %s: %w", proposalID, sentinel.ErrNotFound)
	}
	return nil
}

// LoadAll returns every stored proposal, oldest submission first.
func (s *Postgres) LoadAll(ctx context.Context) ([]*models.RegionalProposal, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, title, description,
		       primary_jurisdiction, secondary_jurisdictions, federation_wide,
		       proposal_type, nodes, content_hash, cross_deck_surfaces,
		       min_participation, tier_weighting, emergency_bypass, eligible_voters,
		       window_start, window_end, window_extendable,
		       sync_status, support_votes, oppose_votes, abstain_votes, participation,
		       submitter, submitted_at, modified_at, urgency, validator_hash
		FROM regional_proposals
		ORDER BY submitted_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	defer rows.Close()

	var out []*models.RegionalProposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	return out, nil
}

func scanProposal(rows pgx.Rows) (*models.RegionalProposal, error) {
	var (
		p          models.RegionalProposal
		rawID      string
		primary    string
		secondary  []string
		pType      string
		nodes      []string
		surfaces   []string
		syncStatus string
		urgency    string
	)
	if err := rows.Scan(
		&rawID, &p.Title, &p.Description,
		&primary, &secondary, &p.Scope.FederationWide,
		&pType, &nodes, &p.ContentHash, &surfaces,
		&p.Quorum.MinParticipation, &p.Quorum.TierWeighting, &p.Quorum.EmergencyBypass, &p.Quorum.EligibleVoters,
		&p.Window.Start, &p.Window.End, &p.Window.Extendable,
		&syncStatus, &p.Tallies.Support, &p.Tallies.Oppose, &p.Tallies.Abstain, &p.Tallies.Participation,
		&p.Meta.Submitter, &p.Meta.SubmittedAt, &p.Meta.ModifiedAt, &urgency, &p.Meta.ValidatorHash,
	); err != nil {
		return nil, err
	}

	proposalID, err := id.ParseProposalID(rawID)
	if err != nil {
		return nil, err
	}
	p.ID = proposalID
	p.Scope.Primary = id.Jurisdiction(primary)
	p.Scope.Secondary = fromStrings[id.Jurisdiction](secondary)
	p.Type = models.ProposalType(pType)
	p.Nodes = fromStrings[id.NodeID](nodes)
	p.CrossDeck.Surfaces = fromStrings[id.Surface](surfaces)
	p.SyncStatus = models.SyncStatus(syncStatus)
	p.Meta.Urgency = models.Urgency(urgency)
	return &p, nil
}

func toStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func fromStrings[T ~string](values []string) []T {
	if len(values) == 0 {
		return nil
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}
