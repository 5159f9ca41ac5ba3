package trace

import (
	"strconv"
	"strings"
)

// Segments splits a trace path into its segments.
func Segments(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// Depth is the number of segments in path.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, "/") + 1
}

// IsTriggerPath reports whether path records the trigger that started the
// run. Both "trigger" and the indexed form "trigger/N" qualify.
func IsTriggerPath(path string) bool {
	if path == "trigger" {
		return true
	}
	rest, ok := strings.CutPrefix(path, "trigger/")
	if !ok {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

// isDescendant reports whether path lies strictly below ancestor.
func isDescendant(path, ancestor string) bool {
	return len(path) > len(ancestor)+1 &&
		strings.HasPrefix(path, ancestor) &&
		path[len(ancestor)] == '/'
}

// pluralKeys maps a path segment to the config key that may hold it instead.
var pluralKeys = map[string]string{
	"trigger":   "triggers",
	"action":    "actions",
	"condition": "conditions",
}

// GetDataFromPath resolves a trace path against a configuration tree.
//
// Resolution follows the recorder's conventions:
//   - a "sequence" segment absent from a mapping is skipped (the recorder
//     inserts it even when the config lists actions directly)
//   - index 0 against a single mapping returns that mapping
//   - "trigger", "action" and "condition" also match their plural keys
//
// Any other miss returns a *PathResolutionError.
func GetDataFromPath(config ActionConfig, path string) (any, error) {
	var cur any = config
	for _, seg := range Segments(path) {
		if idx, err := strconv.Atoi(seg); err == nil {
			switch node := cur.(type) {
			case []any:
				if idx < 0 || idx >= len(node) {
					return nil, &PathResolutionError{Path: path, Segment: seg}
				}
				cur = node[idx]
			case map[string]any:
				if idx != 0 {
					return nil, &PathResolutionError{Path: path, Segment: seg}
				}
			default:
				return nil, &PathResolutionError{Path: path, Segment: seg}
			}
			continue
		}

		node, ok := cur.(map[string]any)
		if !ok {
			return nil, &PathResolutionError{Path: path, Segment: seg}
		}
		next, ok := node[seg]
		if !ok {
			if plural, has := pluralKeys[seg]; has {
				next, ok = node[plural]
			}
		}
		if !ok || next == nil {
			if seg == "sequence" {
				continue
			}
			return nil, &PathResolutionError{Path: path, Segment: seg}
		}
		cur = next
	}
	if cur == nil {
		return nil, &PathResolutionError{Path: path}
	}
	return cur, nil
}

// PathIndex is the ordered view of a record's step paths.
type PathIndex struct {
	steps  Steps
	config ActionConfig
	segs   [][]string
	ends   []int
}

// NewPathIndex indexes the steps of rec.
//
// Subtree ends are computed in one pass: descendants of a path are
// contiguous, so a stack of open ancestors is enough.
func NewPathIndex(rec *Record) *PathIndex {
	n := len(rec.Steps)
	x := &PathIndex{
		steps:  rec.Steps,
		config: rec.Config,
		segs:   make([][]string, n),
		ends:   make([]int, n),
	}

	stack := make([]int, 0, 8)
	for i, step := range rec.Steps {
		x.segs[i] = Segments(step.Path)
		for len(stack) > 0 && !isDescendant(step.Path, rec.Steps[stack[len(stack)-1]].Path) {
			x.ends[stack[len(stack)-1]] = i
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, i)
	}
	for _, open := range stack {
		x.ends[open] = n
	}
	return x
}

// Len is the number of distinct paths.
func (x *PathIndex) Len() int { return len(x.steps) }

// Path returns the path at position i.
func (x *PathIndex) Path(i int) string { return x.steps[i].Path }

// OrderedPaths returns every path in recorded order.
func (x *PathIndex) OrderedPaths() []string { return x.steps.Paths() }

// Executions returns the executions of the path at position i.
func (x *PathIndex) Executions(i int) []StepExecution { return x.steps[i].Executions }

// SubtreeEnd returns the position just past the last descendant of i.
func (x *PathIndex) SubtreeEnd(i int) int { return x.ends[i] }

// relative returns the segments of path k below the depth of path i.
func (x *PathIndex) relative(k, i int) []string {
	return x.segs[k][len(x.segs[i]):]
}

// ConfigAt resolves the path at position i against the record's config.
func (x *PathIndex) ConfigAt(i int) (any, error) {
	return GetDataFromPath(x.config, x.steps[i].Path)
}
