package entity

import "errors"

// Domain errors
var (
	// Pipeline errors
	ErrInvalidChunkSize     = errors.New("chunk size must be at least 1")
	ErrUpstreamCall         = errors.New("upstream model call failed")
	ErrMalformedModelOutput = errors.New("malformed model output")

	// Run errors
	ErrRunNotFound    = errors.New("run not found")
	ErrRunCancelled   = errors.New("run cancelled by user")
	ErrRunNotActive   = errors.New("run is not active")
	ErrRunNotFinished = errors.New("run result not available")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidParameter = errors.New("invalid parameter")
)
