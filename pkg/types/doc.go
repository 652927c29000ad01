// Package types defines the Store and Tables interfaces, entity types, and
// standard errors for the complaints tracker.
//
// The interfaces here are implemented by internal/sqlite and consumed by
// internal/complaint, so neither package depends on the other.
package types
