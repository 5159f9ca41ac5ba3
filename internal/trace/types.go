package trace

import (
	"math"
	"strings"
	"time"
)

// RunState is the lifecycle state of a recorded run.
type RunState string

const (
	StateRunning  RunState = "running"
	StateStopped  RunState = "stopped"
	StateDebugged RunState = "debugged"
)

// Execution describes how a run ended.
type Execution string

const (
	ExecutionFinished         Execution = "finished"
	ExecutionAborted          Execution = "aborted"
	ExecutionCancelled        Execution = "cancelled"
	ExecutionFailedConditions Execution = "failed_conditions"
	ExecutionFailedSingle     Execution = "failed_single"
	ExecutionFailedMaxRuns    Execution = "failed_max_runs"
	ExecutionError            Execution = "error"
)

// DefaultDomain is assumed when a record does not name its domain.
const DefaultDomain = "automation"

// ActionConfig is one node of a static automation or script definition.
// Values come straight from JSON or YAML decoding.
type ActionConfig = map[string]any

// Timestamps holds the start and (optional) finish time of a run.
type Timestamps struct {
	Start  time.Time  `json:"start"`
	Finish *time.Time `json:"finish,omitempty"`
}

// RunContext identifies the event context a run executed in. Logbook
// entries caused by the run carry the same ID.
type RunContext struct {
	ID string `json:"id"`
}

// Record is one recorded run of an automation or script.
//
// Records are treated as read-only by this package.
type Record struct {
	RunID           string       `json:"run_id"`
	Domain          string       `json:"domain"`
	ItemID          string       `json:"item_id"`
	State           RunState     `json:"state"`
	ScriptExecution Execution    `json:"script_execution"`
	Timestamp       Timestamps   `json:"timestamp"`
	Context         RunContext   `json:"context"`
	Error           string       `json:"error,omitempty"`
	Steps           Steps        `json:"trace"`
	Config          ActionConfig `json:"config"`
}

// OwnDomain returns the record's domain, defaulting to automation.
func (r *Record) OwnDomain() string {
	if r.Domain == "" {
		return DefaultDomain
	}
	return r.Domain
}

// StepExecution is one execution of the step at Path.
type StepExecution struct {
	Path             string         `json:"path"`
	Timestamp        time.Time      `json:"timestamp"`
	ChangedVariables map[string]any `json:"changed_variables,omitempty"`
	Result           map[string]any `json:"result,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// LogEntry is one logbook line: an entity state change observed while the
// run was active.
type LogEntry struct {
	When      float64 `json:"when"` // epoch seconds
	Domain    string  `json:"domain"`
	EntityID  string  `json:"entity_id"`
	Name      string  `json:"name"`
	Message   string  `json:"message,omitempty"`
	State     string  `json:"state"`
	ContextID string  `json:"context_id,omitempty"`
}

// Time converts When into a time, rounded to the microsecond.
func (e LogEntry) Time() time.Time {
	return time.UnixMicro(int64(math.Round(e.When * 1e6))).UTC()
}

// EpochSeconds converts t into the float representation used by LogEntry.When.
func EpochSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

// EntryKind classifies a timeline entry so consumers can style it without
// parsing its text.
type EntryKind string

const (
	KindTrigger   EntryKind = "trigger"
	KindStep      EntryKind = "step"
	KindLogbook   EntryKind = "logbook"
	KindTimeGap   EntryKind = "time_gap"
	KindPathError EntryKind = "path_error"
	KindFooter    EntryKind = "footer"
)

// Icon names the glyph a consumer should draw next to an entry.
type Icon string

const (
	IconTrigger        Icon = "mdi:circle"
	IconStep           Icon = "mdi:record-circle-outline"
	IconLogbook        Icon = "mdi:circle-outline"
	IconPathError      Icon = "mdi:alert-octagon-outline"
	IconProgress       Icon = "mdi:progress-clock"
	IconProgressWrench Icon = "mdi:progress-wrench"
	IconSuccess        Icon = "mdi:check-circle"
	IconAlert          Icon = "mdi:alert-circle"
)

// Entry is one renderable unit of the reconstructed timeline.
//
// Path is set only for entries that map 1:1 to a trace step. Logbook
// batches keep their first lines in Description (newline separated) and the
// remainder in MoreItems.
type Entry struct {
	Kind        EntryKind `json:"kind"`
	Icon        Icon      `json:"icon,omitempty"`
	Path        string    `json:"path,omitempty"`
	Description string    `json:"description"`
	Disabled    bool      `json:"disabled"`
	Error       bool      `json:"error,omitempty"`
	MoreItems   []Entry   `json:"more_items,omitempty"`
}

// Fold splits the entry's lines into those shown inline and those hidden
// behind a "show more" control. A single remaining item is not worth a
// click and is returned inline.
func (e Entry) Fold() (inline, hidden []string) {
	if e.Description != "" {
		inline = strings.Split(e.Description, "\n")
	}
	if len(e.MoreItems) == 1 {
		return append(inline, e.MoreItems[0].Description), nil
	}
	for _, item := range e.MoreItems {
		hidden = append(hidden, item.Description)
	}
	return inline, hidden
}
