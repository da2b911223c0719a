// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and the task
// store (defined in internal/store) to fulfill application features.
//
// Key components:
//
// 1. TaskService:
//   - Task CRUD, toggling, search and dashboard statistics
//   - Applies the configured delete policy to recurring templates inside
//     one store transaction
//   - Enriches tasks with current weather through the safe lookup
//
// 2. RecurrenceService:
//   - Computes the next instance of a repeating task, skipping occurrences
//     that already have a pending instance
//   - Generates due instances in batch and reacts to task.completed events
//
// 3. Error Handling:
//   - Not-found and validation errors are returned unchanged
//   - Unexpected failures are wrapped in TaskServiceError or
//     RecurrenceServiceError
//
// The service layer depends on domain entities and the store interface,
// but never on specific infrastructure implementations.
package service
