package domain

import "errors"

var (
	// ErrMissingArtifact means the evaluation bundle or one of its required
	// files is absent. Fatal at startup.
	ErrMissingArtifact = errors.New("evaluation artifact not found")

	// ErrInvalidRequest covers caller mistakes (non-positive amount, empty
	// symbol list). Surfaced as-is, never retried.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDataUnavailable means the market-data provider returned nothing
	// usable. Callers degrade to empty or zero-filled results.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInternalDerivation wraps unexpected failures inside the derivation
	// pipeline. Detail stays internal; callers see a generic failure.
	ErrInternalDerivation = errors.New("analysis derivation failed")
)
