package service

import (
	"context"

	"github.com/phrazzld/task-tracker/internal/domain"
)

// WeatherProvider looks up current weather for a location.
// *openweather.Client satisfies it.
type WeatherProvider interface {
	// Enabled reports whether lookups can be made at all.
	Enabled() bool

	// Fetch returns the weather or a classified error.
	Fetch(ctx context.Context, location string) (*domain.Weather, error)

	// FetchSafe returns the weather or nil, never an error.
	FetchSafe(ctx context.Context, location string) *domain.Weather
}

// TaskWithWeather is a task together with the weather at its location.
// Weather is nil when the task has no location or the lookup failed.
type TaskWithWeather struct {
	*domain.Task
	Weather *domain.Weather `json:"weather,omitempty"`
}
