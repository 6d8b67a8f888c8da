package domain

import "errors"

// Failure taxonomy for recommendation generation. All three are recoverable
// at the batch level: the affected zone is logged and skipped, the job
// continues. Provider failures during measurement fetching are not errors at
// all; they trigger the fallback chain in the fetcher.
var (
	// ErrServiceUnavailable means the generation call could not produce a
	// text payload: missing or placeholder credential, transport error, or
	// an empty response.
	ErrServiceUnavailable = errors.New("generation service unavailable")

	// ErrMalformedOutput means no parsable JSON array could be recovered
	// from the raw response, even after repair.
	ErrMalformedOutput = errors.New("malformed generation output")

	// ErrNoValidRecommendations means the response parsed but every
	// candidate was rejected by validation.
	ErrNoValidRecommendations = errors.New("no valid recommendations after filtering")
)
