// Package postgres provides PostgreSQL implementations of the store
// interfaces defined in internal/store, using the pgx driver through
// database/sql. Every store accepts a store.DBTX so the same code runs
// against a connection pool or inside a transaction via WithTx.
package postgres
