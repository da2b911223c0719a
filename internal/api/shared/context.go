package shared

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ContextKey namespaces the request values set by the API layer.
type ContextKey string

// Request context keys
const (
	// SubjectContextKey holds the subject of a validated bearer token
	SubjectContextKey ContextKey = "subject"

	// TraceIDKey holds the per-request trace ID echoed in error bodies
	TraceIDKey ContextKey = "traceID"
)

// SetTraceID returns a copy of ctx carrying a new 32-character hex trace ID.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, newTraceID())
}

// GetTraceID returns the trace ID carried by ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceIDKey).(string)
	return traceID
}

// SetSubject returns a copy of ctx carrying the authenticated token subject.
func SetSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectContextKey, subject)
}

// GetSubject returns the authenticated token subject, if any.
func GetSubject(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(SubjectContextKey).(string)
	return subject, ok && subject != ""
}

func newTraceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
