package tutor

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse indicates the model returned blank output where
// text was required.
var ErrEmptyResponse = errors.New("model returned empty output")

// ErrMalformedResponse indicates the model output could not be shaped
// into the requested structure even after fallback parsing.
var ErrMalformedResponse = errors.New("model output could not be parsed")

// ValidationError reports rejected user input before any model call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
