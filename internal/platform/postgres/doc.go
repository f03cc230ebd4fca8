// Package postgres implements the store interfaces on PostgreSQL. SQL lives
// in the store methods as plain statements; schema constraints (status CHECK,
// score ranges, cascade deletes) back up the domain validation so invariants
// hold regardless of the caller.
package postgres
