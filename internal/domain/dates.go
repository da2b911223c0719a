package domain

import (
	"strings"
	"time"
)

// dueDateLayouts lists the accepted ISO-8601 forms, most specific first.
// Layouts without a zone are interpreted as UTC.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDueDate parses an ISO-8601 date or date-time.
// A blank string yields nil without error.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	for _, layout := range dueDateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			normalized := NormalizeTime(parsed)
			return &normalized, nil
		}
	}

	return nil, NewValidationError("due_date", "Invalid date format. Use ISO format.", ErrInvalidDate)
}
