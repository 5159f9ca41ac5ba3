// Package logbook selects the logbook entries shown next to a run.
//
// A Filter is a boolean expr-lang expression over the fields of one entry:
//
//	domain, entity_id, name, message, state
//
// For example: domain in ["light", "switch"] && state != "unavailable".
// An empty expression keeps everything.
package logbook

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// Filter is a compiled logbook filter. The zero value keeps every entry.
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles source. Expressions must evaluate to a bool.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Filter{}, nil
	}

	program, err := expr.Compile(source, expr.Env(env(trace.LogEntry{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return &Filter{source: source, program: program}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.source }

// Keep reports whether e passes the filter.
func (f *Filter) Keep(e trace.LogEntry) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, env(e))
	if err != nil {
		return false, fmt.Errorf("evaluate logbook filter on %s: %w", e.EntityID, err)
	}
	keep, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: got %T", ErrInvalidFilter, out)
	}
	return keep, nil
}

// Apply returns the entries that pass the filter, in their original order.
func (f *Filter) Apply(entries []trace.LogEntry) ([]trace.LogEntry, error) {
	if f == nil || f.program == nil {
		return entries, nil
	}
	out := make([]trace.LogEntry, 0, len(entries))
	for _, e := range entries {
		keep, err := f.Keep(e)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, e)
		}
	}
	return out, nil
}

func env(e trace.LogEntry) map[string]any {
	return map[string]any{
		"domain":    e.Domain,
		"entity_id": e.EntityID,
		"name":      e.Name,
		"message":   e.Message,
		"state":     e.State,
	}
}
