// Package federation propagates proposal state to assigned peer nodes and
// tracks the per-node outcome of every push. The coordinator owns the sync
// lifecycle (pending -> syncing -> synchronized/failed); transports only
// deliver one proposal to one node.
package federation

//go:generate mockgen -source=transport.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
)

// NodeTransport delivers the current state of a proposal to one federation
// node. Implementations must honor ctx; a push that has neither acked nor
// errored when the deadline passes counts as failed for that node.
type NodeTransport interface {
	Push(ctx context.Context, node id.NodeID, proposal *models.RegionalProposal) error
}

// Envelope is the wire format for a federation push. Receivers reject
// envelopes whose protocol version they do not support.
type Envelope struct {
	Protocol id.SyncProtocolVersion   `json:"protocol"`
	Origin   string                   `json:"origin"`
	SentAt   time.Time                `json:"sent_at"`
	Proposal *models.RegionalProposal `json:"proposal"`
}
