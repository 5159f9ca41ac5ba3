package trace

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// SignificantTimeChange is the gap above which two consecutive timeline
// events get a "N later" marker between them.
const SignificantTimeChange = time.Second

// IsSignificant reports whether a and b are more than
// SignificantTimeChange apart, in either direction.
func IsSignificant(a, b time.Time) bool {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return d > SignificantTimeChange
}

// Sink receives timeline entries in emission order.
type Sink func(Entry)

// TimeGapTracker remembers the last time reported on the timeline and
// emits a time_gap entry whenever the next event is significantly later.
type TimeGapTracker struct {
	last       time.Time
	emit       Sink
	magnitudes []humanize.RelTimeMagnitude
	loc        Localizer
}

// NewTimeGapTracker starts a tracker at start.
func NewTimeGapTracker(start time.Time, emit Sink, loc Localizer) *TimeGapTracker {
	if loc == nil {
		loc = English()
	}
	return &TimeGapTracker{
		last:       start,
		emit:       emit,
		magnitudes: relativeMagnitudes(loc),
		loc:        loc,
	}
}

// LastReported returns the time most recently reported or advanced to.
func (t *TimeGapTracker) LastReported() time.Time { return t.last }

// SetLastReported moves the reference point without emitting anything.
func (t *TimeGapTracker) SetLastReported(ts time.Time) { t.last = ts }

// IsSignificant reports whether ts is significantly away from the last
// reported time.
func (t *TimeGapTracker) IsSignificant(ts time.Time) bool {
	return IsSignificant(t.last, ts)
}

// MaybeReport emits a time_gap entry when ts is significant. Otherwise it
// only advances the reference point, so small drifts never accumulate into
// a marker. It reports whether an entry was emitted.
func (t *TimeGapTracker) MaybeReport(ts time.Time) bool {
	if !t.IsSignificant(ts) {
		t.last = ts
		return false
	}
	t.ForceReport(t.last, ts)
	return true
}

// ForceReport emits a time_gap entry for the span from → to regardless of
// its size and moves the reference point to to.
func (t *TimeGapTracker) ForceReport(from, to time.Time) {
	span := humanize.CustomRelTime(from, to, "", "", t.magnitudes)
	t.emit(Entry{
		Kind:        KindTimeGap,
		Description: t.loc.Text(MsgTimeLater, span),
	})
	t.last = to
}

// relativeMagnitudes builds the humanize table from localized unit formats.
// Labels are empty; MsgTimeLater supplies the direction word.
func relativeMagnitudes(loc Localizer) []humanize.RelTimeMagnitude {
	const day = 24 * time.Hour
	return []humanize.RelTimeMagnitude{
		{D: 2 * time.Second, Format: loc.Text(MsgUnitSecond), DivBy: 1},
		{D: time.Minute, Format: loc.Text(MsgUnitSeconds), DivBy: time.Second},
		{D: 2 * time.Minute, Format: loc.Text(MsgUnitMinute), DivBy: 1},
		{D: time.Hour, Format: loc.Text(MsgUnitMinutes), DivBy: time.Minute},
		{D: 2 * time.Hour, Format: loc.Text(MsgUnitHour), DivBy: 1},
		{D: day, Format: loc.Text(MsgUnitHours), DivBy: time.Hour},
		{D: 2 * day, Format: loc.Text(MsgUnitDay), DivBy: 1},
		{D: time.Duration(math.MaxInt64), Format: loc.Text(MsgUnitDays), DivBy: day},
	}
}
