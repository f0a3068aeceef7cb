package apperr

import "errors"

// Error taxonomy shared by the service layer. Handlers map these to HTTP
// statuses; everything else is treated as an internal error.
var (
	// ErrNotFound covers unknown user/course/recommendation ids.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState covers actions against an already-dismissed or
	// expired recommendation, and interaction payloads that violate the
	// interaction invariants (rating outside a rated interaction).
	ErrInvalidState = errors.New("invalid state")

	// ErrConfiguration covers bad settings writes: algorithm weights not
	// summing to 1.0, non-positive limits. Rejected at update time, never
	// surfaced during generation.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrColdStart signals that a generation run had nothing to score
	// against, such as an empty published catalog. A user without history
	// is not a cold start error; popularity still serves them.
	ErrColdStart = errors.New("cold start")
)
