package domain

import "fmt"

// ValidationError reports a field-shape or content violation at registration
// or PIN submission. It is recovered locally, surfaced as a field-level
// message, and never mutates state or emits an audit event.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}
