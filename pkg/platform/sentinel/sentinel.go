package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, fetchers, and transports
// return these (optionally wrapped) so services can translate them into
// domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store or cache
// - ErrConflict: write collided with existing state
// - ErrExpired: cached snapshot or sync window has passed
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrExpired  = errors.New("expired")
)
