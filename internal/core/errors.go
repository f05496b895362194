package core

import "errors"

// Error taxonomy for the pipeline. Callers dispatch with errors.Is; detail is
// carried by wrapping (fmt.Errorf("...: %w", ErrX)).
var (
	// ErrNoTranscript means ingestion had nothing to chunk. Terminal for the
	// video; the user has to pick another one.
	ErrNoTranscript = errors.New("no transcript available")

	// ErrIndexNotFound means an operation was attempted before the video was
	// successfully processed.
	ErrIndexNotFound = errors.New("video index not found")

	// ErrGenerationFailed means the model call errored, timed out, or kept
	// returning unusable output after bounded retries.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrValidationFailed means generated output failed an internal
	// consistency check (e.g. an MCQ whose correct letter matches no option).
	ErrValidationFailed = errors.New("validation failed")
)
