// Package apperrors defines the error taxonomy shared across the matching
// pipeline: missing records, premature operations, malformed LLM output,
// and upstream service failures.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotStructured is returned when matching is requested for a
	// bottleneck whose structuring has not completed.
	ErrNotStructured = errors.New("bottleneck not structured yet")

	// ErrDuplicate is returned on unique-constraint violations, e.g. a
	// second feedback submission for the same match.
	ErrDuplicate = errors.New("record already exists")
)

// ParseError indicates the text-generation service returned something that
// is not the JSON shape the prompt contract demands. Raw carries the
// offending response for operator inspection.
type ParseError struct {
	Op  string
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: failed to parse model response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UpstreamError indicates the text-generation call itself failed
// (network, auth, rate limit) before any response could be parsed.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream service unavailable: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
