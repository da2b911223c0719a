// Package openweather provides a client for the OpenWeatherMap "current
// weather" endpoint that returns domain.Weather values.
//
// This package is an infrastructure adapter: it translates between the
// application's domain model and the external service without exposing the
// details of the remote API to the rest of the application.
//
// Key components:
//
// 1. Client:
//   - Validates the location before any network call
//   - Reuses a single pooled *http.Client injected by the caller
//   - Retries rate-limit responses, server errors and connection failures
//     with exponential backoff inside a fixed time budget
//
// 2. Response Processing:
//   - Parses responses leniently, degrading missing or malformed
//     fields to defaults instead of failing
//
// 3. Error Handling:
//   - Classifies every failure as an *Error with a Kind and a sentinel
//     that callers can match with errors.Is
//   - FetchSafe swallows those errors for call sites that must not fail
//     because weather enrichment failed
package openweather
