package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is the base of every validation failure so callers can map
// them to a 400 with errors.Is.
var ErrInvalid = errors.New("invalid input")

// ValidateDreamTitle validates a dream title
func ValidateDreamTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return fmt.Errorf("%w: title is required", ErrInvalid)
	}

	if len(trimmed) > 200 {
		return fmt.Errorf("%w: title is too long (max 200 characters)", ErrInvalid)
	}

	return nil
}

// ValidateProgress validates a dream progress percentage
func ValidateProgress(progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("%w: progress must be between 0 and 100", ErrInvalid)
	}
	return nil
}
