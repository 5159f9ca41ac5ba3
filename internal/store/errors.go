package store

import "errors"

var (
	// ErrTraceNotFound is returned when no trace has the requested run ID.
	ErrTraceNotFound = errors.New("store: trace not found")

	// ErrRunIDRequired is returned when saving a record without a run ID.
	ErrRunIDRequired = errors.New("store: run id is required")

	// ErrEntityIDRequired is returned when recording a logbook entry
	// without an entity.
	ErrEntityIDRequired = errors.New("store: entity id is required")

	// ErrContextIDRequired is returned when querying the logbook by an
	// empty context.
	ErrContextIDRequired = errors.New("store: context id is required")

	// ErrInvalidRetention is returned when pruning with a non-positive age.
	ErrInvalidRetention = errors.New("store: retention must be positive")
)
