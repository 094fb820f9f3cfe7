// Package store defines the persistence interfaces for the application's
// entities, the shared error taxonomy for store implementations, and the
// transaction helper used by services to compose multi-step writes.
//
// Concrete implementations live in internal/platform/postgres.
package store
