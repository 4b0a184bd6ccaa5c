package validation

import (
	"fmt"
	"strings"
)

var goalTypes = map[string]bool{
	"consistency": true,
	"deadline":    true,
}

var recurrences = map[string]bool{
	"":        true,
	"weekly":  true,
	"monthly": true,
}

// ValidateGoal validates a goal template embedded in a dream.
// Malformed template data indicates a caller bug and fails fast.
func ValidateGoal(title, goalType, recurrence string, frequency int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: goal title is required", ErrInvalid)
	}

	if !goalTypes[goalType] {
		return fmt.Errorf("%w: invalid goal type %q", ErrInvalid, goalType)
	}

	if !recurrences[recurrence] {
		return fmt.Errorf("%w: invalid recurrence %q", ErrInvalid, recurrence)
	}

	if frequency < 0 || frequency > 7 {
		return fmt.Errorf("%w: frequency must be between 0 and 7", ErrInvalid)
	}

	return nil
}
