// Package store defines the persistence interfaces for research tasks and
// their artifacts, along with the sentinel errors shared by all store
// implementations. Implementations live under platform-specific packages
// (e.g. internal/platform/postgres).
package store
