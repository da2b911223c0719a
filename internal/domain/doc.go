// Package domain contains the core business entities, value objects, and
// domain logic of the task tracker: tasks, their enumerations, partial
// update patches and weather snapshots. It is independent of any specific
// infrastructure or delivery mechanism.
package domain
