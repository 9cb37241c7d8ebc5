// Package apierr provides the admission error taxonomy used by the control
// plane (§7), grounded on infrastructure/errors' WrapWithContext/HTTPError
// pattern but inverted: dettrackd constructs outgoing errors rather than
// parsing incoming ones, since it is the server here rather than a client
// of another service.
package apierr

import "fmt"

// NotFoundError signals a missing model or unreachable video (§7).
type NotFoundError struct {
	Subject string
}

func (e *NotFoundError) Error() string { return e.Subject + " not found" }

// NewNotFound builds a NotFoundError whose message matches the literal
// scenario bodies in §8 ("{model} not found", "{video} not found").
func NewNotFound(subject string) error { return &NotFoundError{Subject: subject} }

// InvalidInputError signals a malformed admission field (e.g. email).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Reason }

// NewInvalidInput builds an InvalidInputError.
func NewInvalidInput(format string, args ...any) error {
	return &InvalidInputError{Reason: fmt.Sprintf(format, args...)}
}

// WrapWithContext attaches a short operation label to err, matching
// infrastructure/errors.WrapWithContext's call shape.
func WrapWithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", context, err)
}
