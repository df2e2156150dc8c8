package handler

import (
	"concord/internal/proposal/federation"
	"concord/internal/proposal/models"
)

// ProposalListResponse wraps a query result. Proposals marshal in their
// wire shape, the same one federation pushes carry.
type ProposalListResponse struct {
	Proposals []*models.RegionalProposal `json:"proposals"`
}

// VoteResponse is the HTTP response for a recorded ballot.
type VoteResponse struct {
	ProposalID string             `json:"proposal_id"`
	Tallies    models.VoteTallies `json:"tallies"`
}

// SyncReportResponse is the HTTP representation of one sync attempt.
type SyncReportResponse struct {
	ProposalID    string   `json:"proposal_id"`
	Status        string   `json:"status"`
	SyncedNodeIDs []string `json:"synced_node_ids"`
	FailedNodeIDs []string `json:"failed_node_ids"`
	DurationMS    int64    `json:"duration_ms"`
}

// FromSyncReport converts a sync report to its HTTP representation.
func FromSyncReport(report *federation.SyncReport) *SyncReportResponse {
	resp := &SyncReportResponse{
		ProposalID:    report.ProposalID.String(),
		Status:        string(report.Status),
		SyncedNodeIDs: make([]string, 0, len(report.Synced)),
		FailedNodeIDs: make([]string, 0, len(report.Failed)),
		DurationMS:    report.Duration.Milliseconds(),
	}
	for _, node := range report.Synced {
		resp.SyncedNodeIDs = append(resp.SyncedNodeIDs, string(node))
	}
	for _, node := range report.Failed {
		resp.FailedNodeIDs = append(resp.FailedNodeIDs, string(node))
	}
	return resp
}

// PushAck is the HTTP response to an accepted federation push.
type PushAck struct {
	Status     string `json:"status"`
	ProposalID string `json:"proposal_id"`
}
