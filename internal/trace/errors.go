package trace

import (
	"errors"
	"fmt"
)

var (
	// ErrPathResolution is matched by every PathResolutionError.
	ErrPathResolution = errors.New("trace: path not found in config")

	// ErrInvalidSteps is returned when the step map cannot be decoded.
	ErrInvalidSteps = errors.New("trace: invalid step map")
)

// PathResolutionError reports a trace path with no matching config node,
// typically because the configuration was edited after the run.
type PathResolutionError struct {
	Path    string
	Segment string
}

func (e *PathResolutionError) Error() string {
	return fmt.Sprintf("trace: unable to resolve segment %q of path %q", e.Segment, e.Path)
}

// Is lets errors.Is match ErrPathResolution.
func (e *PathResolutionError) Is(target error) bool {
	return target == ErrPathResolution
}
