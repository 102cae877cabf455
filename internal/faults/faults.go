// Package faults defines the shared error taxonomy for rcsup components.
//
// Sentinel errors tag failures with their recovery class: configuration
// failures abort the run, mount and validation failures are recoverable per
// entry, submission failures retry naturally at the next scheduled trigger.
package faults

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig marks malformed configuration or list files. Fatal.
	ErrConfig = errors.New("config error")
	// ErrMount marks a single mount entry failure. Recoverable per entry.
	ErrMount = errors.New("mount error")
	// ErrValidation marks a task spec missing required fields.
	ErrValidation = errors.New("validation error")
	// ErrSubmission marks a job submission the daemon rejected.
	ErrSubmission = errors.New("submission error")
	// ErrNotFound marks a resource the daemon does not know about.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks failures with no better classification.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the supervisor run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConfig)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
