// Package events provides types and interfaces for task lifecycle events.
//
// Services emit events without knowing which handlers will process them, so
// the task service can announce a completed task without depending on the
// recurrence logic that reacts to it.
//
// The primary components are:
// - TaskEvent: a lifecycle change of a single task
// - EventHandler: interface for components that can handle events
// - EventEmitter: interface for components that can emit events
// - InMemoryEventEmitter: synchronous in-process dispatch
package events
