package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalService = errors.New("external service error")
	ErrValidation      = errors.New("validation error")
	ErrConfiguration   = errors.New("configuration error")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes component context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
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

// userError carries a message that may be shown to the end user verbatim.
type userError struct {
	marker  error
	message string
}

func (e *userError) Error() string { return e.message }

func (e *userError) Unwrap() error { return e.marker }

// UserMessage returns the message intended for the end user.
func (e *userError) UserMessage() string { return e.message }

// Validation returns a validation failure whose message is safe to display inline.
func Validation(message string) error {
	return &userError{marker: ErrValidation, message: strings.TrimSpace(message)}
}

// UserMessage maps an error to text that is safe to show an end user. Errors
// created by Validation keep their own message; everything else collapses to a
// generic sentence so provider details never leak.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var shown interface{ UserMessage() string }
	if errors.As(err, &shown) {
		if msg := strings.TrimSpace(shown.UserMessage()); msg != "" {
			return msg
		}
	}
	switch {
	case errors.Is(err, ErrValidation):
		return "Please check your input and try again."
	case errors.Is(err, ErrConfiguration):
		return "The assistant is not configured yet. Add an API key and try again."
	default:
		return "Something went wrong. Please try again."
	}
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
