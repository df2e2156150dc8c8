package handler

import (
	"time"

	"concord/internal/registry/models"
)

// SyncResultResponse is the HTTP representation of one sync result.
type SyncResultResponse struct {
	RegistryID         string    `json:"registry_id"`
	Timestamp          time.Time `json:"timestamp"`
	ChainHeight        int64     `json:"chain_height"`
	ConsensusAchieved  bool      `json:"consensus_achieved"`
	ConsensusPercent   float64   `json:"consensus_percent"`
	VerifiersProcessed int       `json:"verifiers_processed"`
	VerifiersValidated int       `json:"verifiers_validated"`
	VerifiersFailed    int       `json:"verifiers_failed"`
	DurationMS         int64     `json:"duration_ms"`
	Errors             []string  `json:"errors,omitempty"`
	Warnings           []string  `json:"warnings,omitempty"`
}

// FromSyncResult converts a domain sync result to its HTTP representation.
func FromSyncResult(result *models.SyncResult) *SyncResultResponse {
	return &SyncResultResponse{
		RegistryID:         string(result.RegistryID),
		Timestamp:          result.Timestamp,
		ChainHeight:        result.ChainHeight,
		ConsensusAchieved:  result.ConsensusAchieved,
		ConsensusPercent:   result.ConsensusPercent,
		VerifiersProcessed: result.VerifiersProcessed,
		VerifiersValidated: result.VerifiersValidated,
		VerifiersFailed:    result.VerifiersFailed,
		DurationMS:         result.Duration.Milliseconds(),
		Errors:             result.Errors,
		Warnings:           result.Warnings,
	}
}

// BatchSyncResponse is the HTTP response for POST /registry/sync/batch.
type BatchSyncResponse struct {
	Results []*SyncResultResponse `json:"results"`
	Summary *SummaryResponse      `json:"summary"`
}

// SyncListResponse is the HTTP response for GET /registry/syncs.
type SyncListResponse struct {
	Syncs []*SyncResultResponse `json:"syncs"`
}

// FromSyncResults converts a result slice, preserving order.
func FromSyncResults(results []*models.SyncResult) []*SyncResultResponse {
	out := make([]*SyncResultResponse, len(results))
	for i, result := range results {
		out[i] = FromSyncResult(result)
	}
	return out
}

// SummaryResponse is the HTTP representation of a sync summary.
type SummaryResponse struct {
	TotalProcessed    int     `json:"total_processed"`
	SuccessfulSyncs   int     `json:"successful_syncs"`
	FailedSyncs       int     `json:"failed_syncs"`
	TotalValidated    int     `json:"total_validated"`
	TotalFailures     int     `json:"total_failures"`
	AverageDurationMS int64   `json:"average_duration_ms"`
	ConsensusRate     float64 `json:"consensus_rate"`
}

// FromSummary converts a domain summary to its HTTP representation.
func FromSummary(summary models.SyncSummary) *SummaryResponse {
	return &SummaryResponse{
		TotalProcessed:    summary.TotalProcessed,
		SuccessfulSyncs:   summary.SuccessfulSyncs,
		FailedSyncs:       summary.FailedSyncs,
		TotalValidated:    summary.TotalValidated,
		TotalFailures:     summary.TotalFailures,
		AverageDurationMS: summary.AverageDuration.Milliseconds(),
		ConsensusRate:     summary.ConsensusRate,
	}
}
