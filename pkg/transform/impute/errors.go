package impute

import "fmt"

// InvalidColumnError reports a column named at fit time that is absent from
// the frame or does not hold category labels.
type InvalidColumnError struct {
	Column string
	Reason string
	cause  error
}

func (e *InvalidColumnError) Error() string {
	return fmt.Sprintf("invalid categorical column %q: %s", e.Column, e.Reason)
}

func (e *InvalidColumnError) Unwrap() error { return e.cause }

// SchemaMismatchError reports a frame passed to Apply that lacks a column the
// fitted state refers to.
type SchemaMismatchError struct {
	Column string
	Role   string // "target" or "driver"
	cause  error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %s column %q: %v", e.Role, e.Column, e.cause)
}

func (e *SchemaMismatchError) Unwrap() error { return e.cause }
