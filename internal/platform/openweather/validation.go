package openweather

import (
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/task-tracker/internal/domain"
)

// MaxLocationLength is the longest location accepted, in characters.
const MaxLocationLength = 100

// forbiddenLocationChars may not appear anywhere in a location.
const forbiddenLocationChars = `<>"'\`

// ValidateLocation checks a free-text location and returns it trimmed.
// Failures are *domain.ValidationError values wrapping ErrInvalidLocation.
func ValidateLocation(location string) (string, error) {
	trimmed := strings.TrimSpace(location)

	switch {
	case trimmed == "":
		return "", domain.NewValidationError("location", "Location is required", ErrInvalidLocation)
	case utf8.RuneCountInString(location) > MaxLocationLength:
		return "", domain.NewValidationError("location", "Location must be at most 100 characters", ErrInvalidLocation)
	case strings.ContainsAny(location, forbiddenLocationChars):
		return "", domain.NewValidationError("location", "Location contains invalid characters", ErrInvalidLocation)
	}

	return trimmed, nil
}
