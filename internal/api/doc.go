// Package api exposes the task tracker over HTTP. Handlers decode and
// validate requests, call the task service, and translate service errors
// into status codes and client-safe messages.
package api
