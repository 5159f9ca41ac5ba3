package trace

import (
	"sort"
	"time"
)

// TimeLayout formats absolute times in trigger and footer entries.
const TimeLayout = "2006-01-02 15:04:05"

// Option configures Reconstruct.
type Option func(*options)

type options struct {
	loc      Localizer
	location *time.Location
}

// WithLocalizer sets the source of the engine's own strings.
func WithLocalizer(loc Localizer) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// WithLocation sets the time zone absolute times are shown in.
func WithLocation(location *time.Location) Option {
	return func(o *options) {
		if location != nil {
			o.location = location
		}
	}
}

// Reconstruct builds the timeline of rec, interleaving logbook entries by
// time. The result always ends with exactly one footer entry.
//
// logbook need not be sorted. Reconstruct never mutates its inputs.
func Reconstruct(rec *Record, logbook []LogEntry, describe DescribeFn, opts ...Option) []Entry {
	o := options{loc: English(), location: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}
	if describe == nil {
		describe = fallbackDescribe
	}
	if rec == nil {
		rec = &Record{}
	}

	var entries []Entry
	emit := func(e Entry) { entries = append(entries, e) }

	sorted := make([]LogEntry, len(logbook))
	copy(sorted, logbook)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].When < sorted[b].When })
	sorted = skipSelfTrigger(sorted, rec.OwnDomain())

	tracker := NewTimeGapTracker(rec.Timestamp.Start, emit, o.loc)
	merger := NewLogMerger(sorted, tracker, emit, o.loc)

	w := &walker{
		idx:      NewPathIndex(rec),
		describe: describe,
		loc:      o.loc,
		location: o.location,
		merger:   merger,
		tracker:  tracker,
		emit:     emit,
	}
	w.walk()

	for merger.HasNext() {
		merger.Next()
	}
	merger.Flush()

	emit(footer(rec, o.loc, o.location))
	return entries
}

func fallbackDescribe(action ActionConfig, flow FlowType) string {
	if alias := Alias(action); alias != "" {
		return alias
	}
	return string(flow)
}
