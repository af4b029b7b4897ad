package apperr

import "errors"

// Sentinel errors for the failure classes that cross package boundaries.
// Stage-level failures inside the pipeline are absorbed into placeholder
// output and never surface as one of these.
var (
	// ErrNotFound covers unknown job or clip ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation requires a job state it
	// is not in, e.g. finalizing a job that has not completed.
	ErrInvalidState = errors.New("invalid job state")

	// ErrDependencyUnavailable marks a missing external tool or model. The
	// orchestrator converts it into placeholder output rather than failing.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrRenderFailure is a per-clip render error. It isolates to the clip
	// that raised it and never fails an enclosing batch.
	ErrRenderFailure = errors.New("render failure")
)
