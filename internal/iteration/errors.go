package iteration

import (
	"errors"
	"fmt"
)

// ErrCandidateRejected marks a revised document that failed validation.
var ErrCandidateRejected = errors.New("candidate rejected")

// ReviseError records why an iteration produced no usable candidate.
type ReviseError struct {
	Iteration int
	Err       error
}

func (e *ReviseError) Error() string {
	return fmt.Sprintf("iteration %d: revise: %v", e.Iteration, e.Err)
}

func (e *ReviseError) Unwrap() error {
	return e.Err
}
