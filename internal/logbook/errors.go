package logbook

import "errors"

// ErrInvalidFilter is returned for expressions that do not compile to a
// boolean.
var ErrInvalidFilter = errors.New("logbook: invalid filter")
