package influxdb

import (
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-trace/internal/trace"
)

// MeasurementRuns is the measurement every stopped run is written to.
const MeasurementRuns = "trace_runs"

// RunPoint builds the trace_runs point for rec, timestamped at the run's
// start. Tags stay low cardinality: domain, item and outcome.
//
// Runs that are still going have no duration yet; ok is false for them.
func RunPoint(rec *trace.Record) (point *write.Point, ok bool) {
	if rec == nil || rec.State == trace.StateRunning || rec.Timestamp.Finish == nil {
		return nil, false
	}

	outcome := string(rec.ScriptExecution)
	if outcome == "" {
		outcome = "unknown"
	}
	duration := rec.Timestamp.Finish.Sub(rec.Timestamp.Start)

	point = write.NewPoint(
		MeasurementRuns,
		map[string]string{
			"domain":  rec.OwnDomain(),
			"item_id": rec.ItemID,
			"outcome": outcome,
		},
		map[string]interface{}{
			"duration_seconds": duration.Seconds(),
			"steps":            int64(len(rec.Steps)),
			"error":            rec.Error != "",
		},
		rec.Timestamp.Start,
	)
	return point, true
}

// WriteRun queues the run's point. It returns false when nothing was
// queued: the client is closed or the run has not finished.
func (c *Client) WriteRun(rec *trace.Record) bool {
	if !c.IsConnected() {
		return false
	}
	point, ok := RunPoint(rec)
	if !ok {
		return false
	}
	c.writeAPI.WritePoint(point)
	return true
}
