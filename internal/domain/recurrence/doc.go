// Package recurrence holds the date arithmetic behind recurring tasks:
// computing the next due date of a template and building the successor
// instance. It performs no I/O; deduplication and persistence belong to
// the caller.
package recurrence
