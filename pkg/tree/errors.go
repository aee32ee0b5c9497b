package tree

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError describes a single problem found in a tree.
type ValidationError struct {
	ItemID string // Offending id (may be empty)
	Path   string // Slash-separated position, e.g. "0/2/1"
	Err    error  // Sentinel from package domain
}

func (e *ValidationError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("item at %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("item %q at %s: %v", e.ItemID, e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err wraps an
// AggregateError. Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
