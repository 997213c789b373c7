package domain

import "errors"

// Shared error taxonomy. Service packages wrap these so callers can
// branch with errors.Is without importing every service package.
var (
	// ErrValidation marks malformed input (thresholds out of order,
	// unknown room, bad rule definition). Rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an unknown client/campaign/template/tracking id.
	ErrNotFound = errors.New("not found")

	// ErrRateLimited marks an exhausted generation budget. The budget is
	// not consumed by a denied request.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrGenerationFailed marks an external AI collaborator failure.
	// Callers fall back to the deterministic template path.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrStorage marks a persistence failure. Fatal to the current
	// operation; no partial writes survive.
	ErrStorage = errors.New("storage error")

	// ErrVersionConflict marks a lost compare-and-swap on client
	// settings: someone else saved a newer version first.
	ErrVersionConflict = errors.New("settings version conflict")
)
