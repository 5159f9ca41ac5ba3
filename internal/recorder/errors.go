package recorder

import "errors"

var (
	// ErrMissingDependency is returned by New when a required store is nil.
	ErrMissingDependency = errors.New("recorder: missing dependency")

	// ErrInvalidPayload is returned for messages that cannot be decoded.
	ErrInvalidPayload = errors.New("recorder: invalid payload")
)
