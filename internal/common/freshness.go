// Package common provides shared utilities for Folio
package common

import "time"

// Default lifetimes for price data components
const (
	DefaultPriceCacheTTL  = 10 * time.Minute
	DefaultPriceStaleness = 24 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}

// IsFreshAt returns true if updated is within ttl of the supplied clock time.
// Used where the caller injects its own clock for testing.
func IsFreshAt(now, updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
