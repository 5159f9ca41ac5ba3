package trace

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// PathSteps is one trace path with every recorded execution of it.
// Executions are in chronological order; repeated paths (loops) carry more
// than one.
type PathSteps struct {
	Path       string
	Executions []StepExecution
}

// Steps is the ordered step map of a run.
//
// Order matters: paths appear in the order the run first reached them, and
// all descendants of a path follow it contiguously. A plain Go map would
// lose that, so decoding walks the raw JSON object key by key.
type Steps []PathSteps

// UnmarshalJSON decodes a JSON object of path → []StepExecution keeping key
// order. Paths with no executions are dropped.
func (s *Steps) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidSteps)
	}
	root := gjson.ParseBytes(data)
	if root.Type == gjson.Null {
		*s = nil
		return nil
	}
	if !root.IsObject() {
		return fmt.Errorf("%w: expected object, got %s", ErrInvalidSteps, root.Type)
	}

	var (
		out       Steps
		decodeErr error
	)
	root.ForEach(func(key, value gjson.Result) bool {
		path := key.String()
		var execs []StepExecution
		if err := json.Unmarshal([]byte(value.Raw), &execs); err != nil {
			decodeErr = fmt.Errorf("%w: path %q: %v", ErrInvalidSteps, path, err)
			return false
		}
		if len(execs) == 0 {
			return true
		}
		for i := range execs {
			if execs[i].Path == "" {
				execs[i].Path = path
			}
		}
		out = append(out, PathSteps{Path: path, Executions: execs})
		return true
	})
	if decodeErr != nil {
		return decodeErr
	}

	*s = out
	return nil
}

// MarshalJSON writes the steps back as a JSON object in their original order.
func (s Steps) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, step := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(step.Path)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(step.Executions)
		if err != nil {
			return nil, fmt.Errorf("encoding path %q: %w", step.Path, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Paths returns the ordered path list.
func (s Steps) Paths() []string {
	paths := make([]string, len(s))
	for i, step := range s {
		paths[i] = step.Path
	}
	return paths
}

// Lookup returns the executions recorded for path.
func (s Steps) Lookup(path string) ([]StepExecution, bool) {
	for _, step := range s {
		if step.Path == path {
			return step.Executions, true
		}
	}
	return nil, false
}
