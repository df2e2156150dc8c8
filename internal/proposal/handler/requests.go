package handler

import (
	"strings"
	"time"

	"concord/internal/proposal/models"
	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
	pstrings "concord/pkg/platform/strings"
)

// maxAssignedNodes bounds the fan-out of a single proposal. Federations
// larger than this should use federation-wide scope with relay nodes.
const maxAssignedNodes = 25

// QuorumPayload carries the quorum configuration of a submission.
type QuorumPayload struct {
	MinParticipation float64 `json:"min_participation"`
	TierWeighting    bool    `json:"tier_weighting"`
	EmergencyBypass  bool    `json:"emergency_bypass"`
	EligibleVoters   int     `json:"eligible_voters"`
}

// WindowPayload carries the voting window of a submission.
type WindowPayload struct {
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Extendable bool      `json:"extendable"`
}

// SubmitProposalRequest is the HTTP request body for POST /proposals.
type SubmitProposalRequest struct {
	Title                  string        `json:"title"`
	Description            string        `json:"description"`
	Type                   string        `json:"type"`
	PrimaryJurisdiction    string        `json:"primary_jurisdiction"`
	SecondaryJurisdictions []string      `json:"secondary_jurisdictions"`
	FederationWide         bool          `json:"federation_wide"`
	NodeIDs                []string      `json:"node_ids"`
	CrossDeckSurfaces      []string      `json:"cross_deck_surfaces"`
	Quorum                 QuorumPayload `json:"quorum"`
	Window                 WindowPayload `json:"voting_window"`
	Urgency                string        `json:"urgency"`
	Submitter              string        `json:"submitter"`

	parsed *models.RegionalProposal
}

// Validate parses the structural fields of the submission: enums, IDs, and
// the voting window. The content constraints (title length, description
// length, jurisdiction, node assignment) are checked by the service so they
// fail in their documented order.
func (r *SubmitProposalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	proposalType, err := models.ParseProposalType(strings.TrimSpace(r.Type))
	if err != nil {
		return err
	}

	urgency := models.UrgencyMedium
	if raw := strings.TrimSpace(r.Urgency); raw != "" {
		urgency, err = models.ParseUrgency(raw)
		if err != nil {
			return err
		}
	}

	submitter := strings.TrimSpace(r.Submitter)
	if submitter == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "submitter is required")
	}

	// An absent primary jurisdiction passes through so the service reports
	// it in constraint order; a present one must parse.
	var primary id.Jurisdiction
	if raw := strings.TrimSpace(r.PrimaryJurisdiction); raw != "" {
		primary, err = id.ParseJurisdiction(raw)
		if err != nil {
			return err
		}
	}

	var secondary []id.Jurisdiction
	for _, raw := range pstrings.DedupeAndTrim(r.SecondaryJurisdictions) {
		jurisdiction, err := id.ParseJurisdiction(raw)
		if err != nil {
			return err
		}
		secondary = append(secondary, jurisdiction)
	}

	nodeIDs := pstrings.DedupeAndTrim(r.NodeIDs)
	if len(nodeIDs) > maxAssignedNodes {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"node_ids must contain at most %d entries", maxAssignedNodes)
	}
	var nodes []id.NodeID
	for _, raw := range nodeIDs {
		node, err := id.ParseNodeID(raw)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}

	var surfaces []id.Surface
	for _, raw := range pstrings.DedupeAndTrimLower(r.CrossDeckSurfaces) {
		surface, err := id.ParseSurface(raw)
		if err != nil {
			return err
		}
		surfaces = append(surfaces, surface)
	}

	if r.Window.Start.IsZero() || r.Window.End.IsZero() {
		return dErrors.New(dErrors.CodeInvalidInput, "voting window start and end are required")
	}
	if !r.Window.End.After(r.Window.Start) {
		return dErrors.New(dErrors.CodeInvalidInput, "voting window end must be after start")
	}

	if r.Quorum.MinParticipation < 0 || r.Quorum.MinParticipation > 100 {
		return dErrors.New(dErrors.CodeInvalidInput, "quorum min_participation must be between 0 and 100")
	}
	if r.Quorum.EligibleVoters < 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "quorum eligible_voters must not be negative")
	}

	r.parsed = &models.RegionalProposal{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Scope: models.RegionScope{
			Primary:        primary,
			Secondary:      secondary,
			FederationWide: r.FederationWide,
		},
		Type:  proposalType,
		Nodes: nodes,
		CrossDeck: models.CrossDeckConfig{
			Surfaces: surfaces,
		},
		Quorum: models.QuorumConfig{
			MinParticipation: r.Quorum.MinParticipation,
			TierWeighting:    r.Quorum.TierWeighting,
			EmergencyBypass:  r.Quorum.EmergencyBypass,
			EligibleVoters:   r.Quorum.EligibleVoters,
		},
		Window: models.VotingWindow{
			Start:      r.Window.Start.UTC(),
			End:        r.Window.End.UTC(),
			Extendable: r.Window.Extendable,
		},
		Meta: models.ProposalMeta{
			Submitter: submitter,
			Urgency:   urgency,
		},
	}
	return nil
}

// ParsedDraft returns the draft proposal assembled from the request.
func (r *SubmitProposalRequest) ParsedDraft() *models.RegionalProposal {
	return r.parsed
}

// VoteRequest is the HTTP request body for POST /proposals/{id}/votes.
type VoteRequest struct {
	Voter   string `json:"voter"`
	Kind    string `json:"kind"`
	Surface string `json:"surface,omitempty"`

	parsedKind    models.VoteKind
	parsedSurface id.Surface
}

// Validate validates and parses the ballot.
func (r *VoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.Voter = strings.TrimSpace(r.Voter)
	if r.Voter == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "voter is required")
	}

	kind, err := models.ParseVoteKind(strings.TrimSpace(r.Kind))
	if err != nil {
		return err
	}
	r.parsedKind = kind

	surface, err := id.ParseSurface(strings.TrimSpace(r.Surface))
	if err != nil {
		return err
	}
	r.parsedSurface = surface
	return nil
}

// ParsedKind returns the validated vote kind.
func (r *VoteRequest) ParsedKind() models.VoteKind { return r.parsedKind }

// ParsedSurface returns the validated surface; empty input defaults to the
// governance surface.
func (r *VoteRequest) ParsedSurface() id.Surface { return r.parsedSurface }

// SyncProposalRequest is the optional HTTP request body for
// POST /proposals/{id}/sync. Without node_ids the sync targets every node
// assigned to the proposal; with node_ids it targets only that subset,
// which is how a failed sync is retried.
type SyncProposalRequest struct {
	NodeIDs []string `json:"node_ids"`

	parsedNodes []id.NodeID
}

// Validate validates and parses the node subset.
func (r *SyncProposalRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	nodeIDs := pstrings.DedupeAndTrim(r.NodeIDs)
	if len(nodeIDs) > maxAssignedNodes {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"node_ids must contain at most %d entries", maxAssignedNodes)
	}

	var nodes []id.NodeID
	for _, raw := range nodeIDs {
		node, err := id.ParseNodeID(raw)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
	}
	r.parsedNodes = nodes
	return nil
}

// ParsedNodes returns the validated node subset; nil means all assigned
// nodes.
func (r *SyncProposalRequest) ParsedNodes() []id.NodeID { return r.parsedNodes }
