package logbook

import (
	"time"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// Window returns the logbook time range relevant to rec: from its start to
// its finish, widened by padding on both sides. Runs still in progress
// extend to now.
func Window(rec *trace.Record, padding time.Duration, now func() time.Time) (from, to time.Time) {
	from = rec.Timestamp.Start.Add(-padding)
	if rec.Timestamp.Finish != nil {
		return from, rec.Timestamp.Finish.Add(padding)
	}
	if now == nil {
		now = time.Now
	}
	return from, now()
}
