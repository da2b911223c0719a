// Package store defines the TaskStore contract shared by the SQLite and
// PostgreSQL backends, the filter and statistics types passed through it,
// and the sentinel errors every backend maps its driver errors onto.
package store
