// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The central piece is the set of status reconcilers: each re-derives an
// entity's status from its related records and emits the notifications the
// derivation calls for. Reconcilers are invoked synchronously from API
// handlers; the batch sweeper (internal/service/sweep) applies the same
// status rules in bulk without notifications.
//
// Key components:
//
// 1. Service Interfaces:
//   - Define application-specific operations available to the delivery mechanisms
//   - Each service focuses on a specific domain area (tasks, events, invitations, etc.)
//
// 2. Use Case Implementations:
//   - Coordinate between multiple repositories and domain services
//   - Apply transactional boundaries when operations span multiple repositories
//   - Enforce application-level business rules that span multiple domain entities
//
// 3. Error Handling:
//   - Translate store-specific errors to application-level errors
//   - Provide meaningful error context for API responses
//
// The service layer depends on domain entities and repository interfaces (from
// store), but never on specific infrastructure implementations, maintaining
// the Dependency Inversion Principle of clean architecture.
package service
