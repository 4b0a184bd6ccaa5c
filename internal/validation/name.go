package validation

import (
	"fmt"
	"strings"
)

// ValidateConnectName validates the name recorded for a connect event
func ValidateConnectName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return fmt.Errorf("%w: connect name is required", ErrInvalid)
	}

	if len(trimmed) > 100 {
		return fmt.Errorf("%w: connect name is too long (max 100 characters)", ErrInvalid)
	}

	return nil
}
