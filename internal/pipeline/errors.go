package pipeline

import "errors"

var (
	// ErrValidation marks a malformed stage input.
	ErrValidation = errors.New("validation error")
	// ErrExtractionFailed is returned when the text-detection job ends in FAILED.
	ErrExtractionFailed = errors.New("text detection failed")
	// ErrExtractionTimeout is returned when the job does not finish within the polling budget.
	ErrExtractionTimeout = errors.New("text detection timed out")
)

// ValidationError carries the caller-facing message of a rejected input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationError(msg string) error {
	return &ValidationError{Message: msg}
}
