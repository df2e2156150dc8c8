// Package audit captures the engine's governance trail: proposal
// submissions, votes, and sync outcomes. Events are transport-agnostic so
// stores and sinks can fan out.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Category classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type Category string

const (
	// CategoryGovernance covers events that form the proposal record:
	// submissions and ballots. These require long retention.
	CategoryGovernance Category = "governance"

	// CategorySecurity covers events relevant to monitoring and forensics:
	// rejected peer pushes, registry consistency violations.
	CategorySecurity Category = "security"

	// CategoryOperations covers routine sync activity. These can be sampled
	// or aggregated with shorter retention.
	CategoryOperations Category = "operations"
)

// Event is emitted from domain logic to capture key actions.
type Event struct {
	ID        uuid.UUID
	Category  Category
	Timestamp time.Time
	Subject   string // proposal ID, registry ID, or node ID
	Action    string
	Actor     string // submitter, voter, peer node, or "system"
	Decision  string // outcome: "accepted", "synchronized", "failed", ...
	Reason    string
	Client    string // client descriptor for user-initiated actions
	ClientFP  string // stable client fingerprint, empty when disabled
	ClientIP  string
	RequestID string
}

// Action is a known audit action name.
type Action string

const (
	// Governance events - the proposal record
	EventProposalSubmitted Action = "proposal_submitted"
	EventVoteRecorded      Action = "vote_recorded"

	// Security events - feed into monitoring
	EventPeerPushRejected     Action = "peer_push_rejected"
	EventConsistencyViolation Action = "consistency_violation"

	// Operations events - routine sync activity
	EventRegistrySyncFinished Action = "registry_sync_finished"
	EventProposalSyncFinished Action = "proposal_sync_finished"
	EventPeerPushReceived     Action = "peer_push_received"
)

// actionCategories maps each audit action to its category.
var actionCategories = map[Action]Category{
	EventProposalSubmitted: CategoryGovernance,
	EventVoteRecorded:      CategoryGovernance,

	EventPeerPushRejected:     CategorySecurity,
	EventConsistencyViolation: CategorySecurity,

	EventRegistrySyncFinished: CategoryOperations,
	EventProposalSyncFinished: CategoryOperations,
	EventPeerPushReceived:     CategoryOperations,
}

// Category returns the Category for this action.
// Unknown actions default to CategoryOperations.
func (a Action) Category() Category {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string, limit int) ([]Event, error)
}
