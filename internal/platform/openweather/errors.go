package openweather

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies weather client failures.
type Kind string

// Error kinds.
const (
	KindValidation  Kind = "validation"
	KindAuth        Kind = "auth"
	KindNotFound    Kind = "not_found"
	KindRateLimited Kind = "rate_limited"
	KindServer      Kind = "server"
	KindAPI         Kind = "api"
	KindParse       Kind = "parse"
	KindTimeout     Kind = "timeout"
	KindConnection  Kind = "connection"
)

// Sentinel errors wrapped by *Error.
var (
	// ErrInvalidLocation is returned when a location fails validation.
	// It is always carried inside a *domain.ValidationError.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrUnauthorized is returned when the API rejects the API key.
	ErrUnauthorized = errors.New("weather API authentication failed")

	// ErrForbidden is returned when the API denies access. It also matches ErrUnauthorized.
	ErrForbidden = fmt.Errorf("%w: access denied", ErrUnauthorized)

	// ErrLocationNotFound is returned when the API does not know the location.
	ErrLocationNotFound = errors.New("weather location not found")

	// ErrRateLimited is returned when the API keeps answering 429.
	ErrRateLimited = errors.New("weather API rate limit reached")

	// ErrServer is returned when the API keeps answering 5xx.
	ErrServer = errors.New("weather API server error")

	// ErrAPI is returned for any other non-2xx response.
	ErrAPI = errors.New("weather API request failed")

	// ErrParse is returned when the response body is not valid JSON.
	ErrParse = errors.New("failed to parse weather API response")

	// ErrTimeout is returned when the request budget is exhausted.
	ErrTimeout = errors.New("weather API request timed out")

	// ErrConnection is returned when the API cannot be reached.
	ErrConnection = errors.New("failed to connect to weather API")
)

// Error describes a failed weather lookup.
type Error struct {
	Kind       Kind
	Location   string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("weather ")
	b.WriteString(string(e.Kind))
	b.WriteString(" error")
	if e.Location != "" {
		fmt.Fprintf(&b, " for %q", e.Location)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is a weather client error.
func IsError(err error) bool {
	var werr *Error
	return errors.As(err, &werr)
}

// KindOf returns the kind of a weather client error, or "" for other errors.
func KindOf(err error) Kind {
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind
	}
	return ""
}
