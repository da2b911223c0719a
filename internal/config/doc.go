// Package config loads the task tracker settings from defaults, an optional
// config.yaml and the environment, then validates them before any component
// is built.
package config
