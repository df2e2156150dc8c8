package models

import (
	"time"

	id "concord/pkg/domain"
)

// ValidationResult is the immutable outcome of running the proof checks
// against one verifier entry. Checks is keyed by check kind; IsValid holds
// only when every check passed. Never mutated after construction.
type ValidationResult struct {
	VerifierID    id.VerifierID   `json:"verifier_id"`
	Checks        map[string]bool `json:"checks"`
	IsValid       bool            `json:"is_valid"`
	ErrorMessages []string        `json:"error_messages,omitempty"`
	ValidatedAt   time.Time       `json:"validated_at"`
}

// NewValidationResult derives IsValid from the supplied checks. An empty
// check map is never valid.
func NewValidationResult(verifierID id.VerifierID, checks map[string]bool, errorMessages []string, now time.Time) *ValidationResult {
	valid := len(checks) > 0
	for _, passed := range checks {
		if !passed {
			valid = false
			break
		}
	}
	return &ValidationResult{
		VerifierID:    verifierID,
		Checks:        checks,
		IsValid:       valid,
		ErrorMessages: errorMessages,
		ValidatedAt:   now,
	}
}

// SyncResult is the report produced by one registry sync invocation. It is
// always produced, even when the fetch failed: a failed sync is data, not an
// exception. Immutable once returned.
type SyncResult struct {
	RegistryID         id.RegistryID `json:"registry_id"`
	Timestamp          time.Time     `json:"timestamp"`
	ChainHeight        int64         `json:"chain_height"`
	ConsensusAchieved  bool          `json:"consensus_achieved"`
	ConsensusPercent   float64       `json:"consensus_percent"`
	VerifiersProcessed int           `json:"verifiers_processed"`
	VerifiersValidated int           `json:"verifiers_validated"`
	VerifiersFailed    int           `json:"verifiers_failed"`
	Duration           time.Duration `json:"duration_ns"`
	Errors             []string      `json:"errors,omitempty"`
	Warnings           []string      `json:"warnings,omitempty"`
}

// Failed reports whether the sync degraded to an error result (fetch or
// invariant failure), as opposed to completing without consensus.
func (r *SyncResult) Failed() bool {
	return len(r.Errors) > 0
}

// SyncSummary aggregates a batch of sync results.
type SyncSummary struct {
	TotalProcessed  int           `json:"total_processed"`
	SuccessfulSyncs int           `json:"successful_syncs"`
	FailedSyncs     int           `json:"failed_syncs"`
	TotalValidated  int           `json:"total_validated"`
	TotalFailures   int           `json:"total_failures"`
	AverageDuration time.Duration `json:"average_duration_ns"`
	ConsensusRate   float64       `json:"consensus_rate"`
}

// Summarize aggregates results into a SyncSummary. Pure: identical input
// yields identical output, and an empty slice yields the zero summary.
func Summarize(results []*SyncResult) SyncSummary {
	summary := SyncSummary{TotalProcessed: len(results)}
	if len(results) == 0 {
		return summary
	}

	var totalDuration time.Duration
	consensusCount := 0
	for _, result := range results {
		if result.Failed() {
			summary.FailedSyncs++
		} else {
			summary.SuccessfulSyncs++
		}
		summary.TotalValidated += result.VerifiersValidated
		summary.TotalFailures += result.VerifiersFailed
		totalDuration += result.Duration
		if result.ConsensusAchieved {
			consensusCount++
		}
	}

	summary.AverageDuration = totalDuration / time.Duration(len(results))
	summary.ConsensusRate = float64(consensusCount) / float64(len(results)) * 100
	return summary
}
