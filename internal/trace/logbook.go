package trace

import (
	"fmt"
	"strings"
	"time"
)

// LogbookEntriesBeforeFold is how many lines of a logbook batch are shown
// inline; the rest go to Entry.MoreItems.
const LogbookEntriesBeforeFold = 2

// LogMerger feeds logbook entries into the timeline. Consecutive entries
// close together in time are grouped into one batch entry; a significant
// gap inside the stream closes the batch and emits a time marker.
type LogMerger struct {
	entries []LogEntry
	cur     int
	pending []LogEntry
	tracker *TimeGapTracker
	emit    Sink
	loc     Localizer
}

// NewLogMerger merges entries, which must be sorted by When.
func NewLogMerger(entries []LogEntry, tracker *TimeGapTracker, emit Sink, loc Localizer) *LogMerger {
	if loc == nil {
		loc = English()
	}
	return &LogMerger{entries: entries, tracker: tracker, emit: emit, loc: loc}
}

// HasNext reports whether unconsumed entries remain.
func (m *LogMerger) HasNext() bool { return m.cur < len(m.entries) }

// Current returns the next unconsumed entry. It must only be called when
// HasNext is true.
func (m *LogMerger) Current() LogEntry { return m.entries[m.cur] }

// Next consumes the current entry into the pending batch.
func (m *LogMerger) Next() {
	e := m.entries[m.cur]
	m.cur++

	if n := len(m.pending); n > 0 {
		prev := m.pending[n-1].Time()
		if ts := e.Time(); IsSignificant(prev, ts) {
			m.Flush()
			m.tracker.ForceReport(prev, ts)
		}
	}
	m.pending = append(m.pending, e)
}

// DrainBefore consumes every entry strictly before ts.
func (m *LogMerger) DrainBefore(ts time.Time) {
	for m.HasNext() && m.Current().Time().Before(ts) {
		m.Next()
	}
}

// Flush renders the pending batch, if any, as one logbook entry.
func (m *LogMerger) Flush() {
	if len(m.pending) == 0 {
		return
	}
	first := m.pending[0].Time()
	last := m.pending[len(m.pending)-1].Time()

	m.tracker.MaybeReport(first)

	entry := Entry{Kind: KindLogbook, Icon: IconLogbook}
	inline := make([]string, 0, LogbookEntriesBeforeFold)
	for i, e := range m.pending {
		line := m.line(e)
		if i < LogbookEntriesBeforeFold {
			inline = append(inline, line)
			continue
		}
		entry.MoreItems = append(entry.MoreItems, Entry{Kind: KindLogbook, Icon: IconLogbook, Description: line})
	}
	entry.Description = strings.Join(inline, "\n")
	m.emit(entry)

	m.tracker.SetLastReported(last)
	m.pending = nil
}

func (m *LogMerger) line(e LogEntry) string {
	msg := e.Message
	if msg == "" {
		msg = m.loc.Text(MsgLogbookTurned, e.State)
	}
	name := e.Name
	if name == "" {
		name = e.EntityID
	}
	if e.EntityID == "" {
		return fmt.Sprintf("%s %s", name, msg)
	}
	return fmt.Sprintf("%s (%s) %s", name, e.EntityID, msg)
}

// skipSelfTrigger drops a leading entry that records the run's own start,
// which the trigger entry already covers.
func skipSelfTrigger(entries []LogEntry, domain string) []LogEntry {
	if len(entries) > 0 && entries[0].Domain == domain {
		return entries[1:]
	}
	return entries
}
