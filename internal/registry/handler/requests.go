package handler

import (
	"strings"

	id "concord/pkg/domain"
	dErrors "concord/pkg/domain-errors"
)

// maxBatchSize bounds one batch sync request. Larger batches should be
// split by the caller.
const maxBatchSize = 50

// SyncRequest is the HTTP request body for POST /registry/sync.
type SyncRequest struct {
	RegistryID string `json:"registry_id"`

	parsedID id.RegistryID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *SyncRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.RegistryID = strings.TrimSpace(r.RegistryID)
	if r.RegistryID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "registry_id is required")
	}

	parsed, err := id.ParseRegistryID(r.RegistryID)
	if err != nil {
		return err
	}
	r.parsedID = parsed
	return nil
}

// ParsedRegistryID returns the validated registry ID.
func (r *SyncRequest) ParsedRegistryID() id.RegistryID {
	return r.parsedID
}

// BatchSyncRequest is the HTTP request body for POST /registry/sync/batch.
type BatchSyncRequest struct {
	RegistryIDs []string `json:"registry_ids"`

	parsedIDs []id.RegistryID
}

// Validate validates and parses the request.
func (r *BatchSyncRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	if len(r.RegistryIDs) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "registry_ids must not be empty")
	}
	if len(r.RegistryIDs) > maxBatchSize {
		return dErrors.Newf(dErrors.CodeInvalidInput,
			"registry_ids must contain at most %d entries", maxBatchSize)
	}

	parsed := make([]id.RegistryID, 0, len(r.RegistryIDs))
	for i, raw := range r.RegistryIDs {
		registryID, err := id.ParseRegistryID(strings.TrimSpace(raw))
		if err != nil {
			return dErrors.Newf(dErrors.CodeInvalidInput,
				"registry_ids[%d]: %s", i, dErrors.MessageOf(err))
		}
		parsed = append(parsed, registryID)
	}
	r.parsedIDs = parsed
	return nil
}

// ParsedRegistryIDs returns the validated registry IDs.
func (r *BatchSyncRequest) ParsedRegistryIDs() []id.RegistryID {
	return r.parsedIDs
}
