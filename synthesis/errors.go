package synthesis

import "errors"

var (
	// ErrCapacity is returned by the STUFF strategy when the combined
	// passages do not fit in a single prompt budget. Callers must
	// pre-filter passages or switch strategy; this is never retried.
	ErrCapacity = errors.New("combined passages exceed prompt capacity")

	// ErrNoConfidentAnswer is returned by MAP_RERANK when every
	// sub-answer has zero or unparseable confidence.
	ErrNoConfidentAnswer = errors.New("no sub-answer produced a usable confidence score")

	// ErrUnparseable is returned by the confidence scorer when no
	// numeric score can be located in a response.
	ErrUnparseable = errors.New("no confidence score found in response")
)
