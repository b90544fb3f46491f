package errs

import "errors"

// Error kinds shared by the engine packages. Call sites wrap them with
// context, callers match them with errors.Is.
var (
	// ErrInsufficientData means more trials must run before the value exists.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidArgument means a malformed configuration, rejected before any work.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrExperimentFailure means a trial could not produce an outcome.
	ErrExperimentFailure = errors.New("experiment failure")
)
