package extract

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks a collaborator (the model endpoint) that could
// not be reached or answered with a transport-level failure. Fatal to
// the current operation, never to the process.
var ErrUnavailable = errors.New("model endpoint unavailable")

// ErrParse marks an extraction payload that looked like JSON but could
// not be decoded into goal records.
var ErrParse = errors.New("extraction parse failed")

// ParseError carries the raw offending model output alongside the
// decode failure, for diagnostics. No partial salvage is attempted on
// a broken payload.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("extraction parse failed: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }
