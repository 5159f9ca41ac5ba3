// Package store persists recorded runs and logbook entries in SQLite.
//
// The trace payload column keeps the complete record as JSON so that the
// recorded step order survives a round trip; the remaining columns exist
// for listing and retention only.
package store
