// Package errs provides centralized error definitions shared across the
// pipeline. Stage-local errors stay in their packages; only sentinels that
// callers check with errors.Is across package boundaries live here.
package errs

import "errors"

// Capability errors.
var (
	// ErrModelUnavailable indicates an NLP capability failed to load or
	// errored at call time. Stages recover from it by degrading output.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrCircuitOpen indicates a circuit breaker has tripped and calls are
	// blocked until the reset window passes.
	ErrCircuitOpen = errors.New("circuit breaker is open")
)

// Search errors.
var (
	// ErrSearchUnavailable indicates every search provider failed or timed out.
	ErrSearchUnavailable = errors.New("search unavailable")

	// ErrNoResults indicates a provider answered but returned nothing.
	ErrNoResults = errors.New("no results")
)

// Input errors.
var (
	// ErrInvalidInput indicates structurally invalid caller input. This is
	// the only error class the pipeline surfaces as a terminal failure.
	ErrInvalidInput = errors.New("invalid input")
)
