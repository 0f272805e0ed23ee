package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks input rejected before any I/O was attempted.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks a missing or malformed credential/setting.
	ErrConfiguration = errors.New("configuration error")
	// ErrUnavailable marks a tier or service skipped because a required
	// credential or identifier is absent. Not a failure.
	ErrUnavailable = errors.New("unavailable")
	// ErrTransient marks a network or remote error; callers treat the
	// attempt as empty and continue.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while
// tagging it with the provided marker for later classification. The
// marker should be one of the exported sentinel errors above.
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
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
