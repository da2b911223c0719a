// Package sqlite provides the SQLite implementation of store.TaskStore on top
// of gorm. It is the default backend for local use: the schema is created with
// gorm's AutoMigrate plus the partial unique index that keeps recurring
// instance generation idempotent.
package sqlite
