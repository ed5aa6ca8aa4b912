// Package types defines the entity types, statuses, step catalog, and
// structured errors for the Cadence delivery tracker.
package types
