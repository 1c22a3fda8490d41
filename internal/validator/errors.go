package validator

import (
	"errors"
	"fmt"
)

// Validator errors.
var (
	// ErrMalformedDate is returned when a ban or day date cannot be parsed.
	ErrMalformedDate = errors.New("malformed date")
)

// DateError records the input that failed to parse.
type DateError struct {
	Input string
	Err   error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Input, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}
